// Package encoding turns label text and pantry lists of unknown charset into
// UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// sampleSize is how much of the input is inspected before deciding.
const sampleSize = 4096

// Charset names the encodings labels and pantry exports turn up in.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF8BOM     Charset = "UTF-8 BOM"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO885915   Charset = "ISO-8859-15"
	ISO88599    Charset = "ISO-8859-9"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect guesses the charset of sample. A byte-order mark wins, then valid
// UTF-8, then chardet's best Latin guess. Anything else is read as
// Windows-1252, the usual charset of spreadsheet exports and till receipts.
func Detect(sample []byte) Charset {
	switch {
	case bytes.HasPrefix(sample, bomUTF8):
		return UTF8BOM
	case bytes.HasPrefix(sample, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(sample, bomUTF16BE):
		return UTF16BE
	case utf8.Valid(sample):
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return Windows1252
	}

	switch result.Charset {
	case "UTF-8":
		return UTF8
	case "ISO-8859-15":
		return ISO885915
	case "ISO-8859-9":
		return ISO88599
	}

	return Windows1252
}

// decoder returns the x/text decoder for c, or nil when the bytes are
// already UTF-8.
func decoder(c Charset) *xencoding.Decoder {
	switch c {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case Windows1252:
		return charmap.Windows1252.NewDecoder()
	case ISO885915:
		return charmap.ISO8859_15.NewDecoder()
	case ISO88599:
		return charmap.ISO8859_9.NewDecoder()
	}

	return nil
}

// NewUTF8Reader detects the charset from the first few kilobytes of r and
// returns a reader that yields UTF-8. A UTF-8 BOM is dropped.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sampleSize)

	sample, err := br.Peek(sampleSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	charset := Detect(sample)

	if charset == UTF8BOM {
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	}

	if dec := decoder(charset); dec != nil {
		return transform.NewReader(br, dec), nil
	}

	return br, nil
}

// lineEndings folds CRLF and lone CR into LF.
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// DecodeText turns raw label text, such as an OCR service's plain-text
// answer or a label dump read from disk, into NFKC-normalised UTF-8 with LF
// line endings. Full-width digits and ligatures come out as plain ASCII, so
// the date rules see the same characters a keyboard would produce.
func DecodeText(b []byte) (string, error) {
	r, err := NewUTF8Reader(bytes.NewReader(b))
	if err != nil {
		return "", err
	}

	out, err := io.ReadAll(transform.NewReader(r, norm.NFKC))
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}

	return lineEndings.Replace(string(out)), nil
}
