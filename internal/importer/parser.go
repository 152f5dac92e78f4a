package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/shelflife/internal/encoding"
	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

var delimiters = []rune{';', ',', '\t'}

// Parser reads pantry list CSVs. It auto-detects the delimiter and which
// profile is in use by matching header names, and reads the expiry column
// with the same rules as a scanned label.
type Parser struct {
	clock func() time.Time
}

func NewParser() *Parser {
	return &Parser{clock: time.Now}
}

// WithClock sets the clock whose year fills in expiry dates written without one.
func (p *Parser) WithClock(clock func() time.Time) *Parser {
	p.clock = clock
	return p
}

func (p *Parser) Parse(r io.Reader) (*Result, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	for _, delim := range delimiters {
		rows, lines, err := readRows(data, delim)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		return p.parseRows(profile, cols, rows[headerIdx+1:], lines[headerIdx+1:]), nil
	}

	return nil, ErrUnknownFormat
}

// readRows reads every record along with the 1-based file line it starts on.
// encoding/csv skips blank lines, so record index and line number differ.
func readRows(data []byte, delim rune) ([][]string, []int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		rows  [][]string
		lines []int
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, lines, nil
		}

		if err != nil {
			return nil, nil, err
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
}

// colIndex maps normalised column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := normalizeHeader(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts items from data rows using the matched profile.
// lines holds the file line of each row.
func (p *Parser) parseRows(profile *Profile, cols colIndex, rows [][]string, lines []int) *Result {
	res := &Result{Profile: profile.Name}
	year := p.clock().Year()

	for i, row := range rows {
		line := lines[i]

		if blank(row) {
			continue
		}

		barcode := cellValue(row, cols, profile.BarcodeCol)
		if barcode == "" {
			res.Rejected = append(res.Rejected, Rejected{Line: line, Reason: "missing barcode"})
			continue
		}

		raw := cellValue(row, cols, profile.ExpiryCol)

		date, ok := expiry.Parse(raw, year)
		if !ok {
			res.Rejected = append(res.Rejected, Rejected{
				Line:   line,
				Reason: fmt.Sprintf("unreadable expiry %q", raw),
			})

			continue
		}

		quantity := cellValue(row, cols, profile.QuantityCol)
		value, unit := parseQuantity(quantity)

		res.Rows = append(res.Rows, Row{
			Line: line,
			Params: item.AppendParams{
				Barcode:       barcode,
				Name:          cellValue(row, cols, profile.NameCol),
				Brand:         cellValue(row, cols, profile.BrandCol),
				Quantity:      quantity,
				QuantityValue: value,
				QuantityUnit:  unit,
				Expiry:        date,
				ExpiryRaw:     raw,
			},
		})
	}

	return res
}

// cellValue gets a trimmed cell by column name; missing columns read as "".
func cellValue(row []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
