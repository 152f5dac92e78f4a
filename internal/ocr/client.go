// Package ocr talks to the expiry-extraction service that reads dates off
// label photos. It does no image processing itself.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/shelflife/internal/encoding"
)

// Result is what the service read off the photo. Expiry is its own best
// guess at a date and Raw is the text it saw; either may be empty.
type Result struct {
	Expiry string `json:"expiry"`
	Raw    string `json:"raw"`
}

// Empty reports whether the service found nothing usable.
func (r *Result) Empty() bool {
	return r == nil || (strings.TrimSpace(r.Expiry) == "" && strings.TrimSpace(r.Raw) == "")
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Extract uploads image as the multipart field "image" and returns what the
// service read.
func (c *Client) Extract(ctx context.Context, image io.Reader, filename string) (*Result, error) {
	resp, err := c.postImage(ctx, "/extract-expiry", image, filename, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("expiry extraction failed (%d)", resp.StatusCode)
	}

	return decodeResult(resp)
}

// postImage sends image as the multipart field "image" along with fields.
// The caller closes the response body.
func (c *Client) postImage(
	ctx context.Context,
	path string,
	image io.Reader,
	filename string,
	fields map[string]string,
) (*http.Response, error) {
	if filename == "" {
		filename = "label.jpg"
	}

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}

	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("writing image: %w", err)
	}

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("writing field %s: %w", k, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	return resp, nil
}

func decodeResult(resp *http.Response) (*Result, error) {
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))

	// Some deployments answer with the recognised text only.
	if mediaType == "text/plain" {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		text, err := encoding.DecodeText(raw)
		if err != nil {
			return nil, err
		}

		return &Result{Raw: strings.TrimSpace(text)}, nil
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &res, nil
}
