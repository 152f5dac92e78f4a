package product

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://world.openfoodfacts.org"

// Client looks products up by barcode in Open Food Facts.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

type offResponse struct {
	Status        int         `json:"status"`
	StatusVerbose string      `json:"status_verbose"`
	Code          string      `json:"code"`
	Product       *offProduct `json:"product"`
}

type offProduct struct {
	ProductName         string          `json:"product_name"`
	Brands              string          `json:"brands"`
	Quantity            string          `json:"quantity"`
	ImageURL            string          `json:"image_url"`
	Categories          string          `json:"categories"`
	NutriscoreGrade     string          `json:"nutriscore_grade"`
	ProductQuantity     json.RawMessage `json:"product_quantity"`
	ProductQuantityUnit string          `json:"product_quantity_unit"`
}

// Lookup fetches the product for barcode. It returns ErrNotFound when Open
// Food Facts has no such product.
func (c *Client) Lookup(ctx context.Context, barcode string) (*Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("lookup product: empty barcode")
	}

	endpoint := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	// Open Food Facts answers unknown barcodes with 404 and status 0.
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("open food facts request failed (%d)", resp.StatusCode)
	}

	var body offResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if body.Status != 1 || body.Product == nil {
		return nil, ErrNotFound
	}

	code := body.Code
	if code == "" {
		code = barcode
	}

	p := body.Product

	return &Product{
		Barcode:       code,
		Name:          strings.TrimSpace(p.ProductName),
		Brand:         strings.TrimSpace(p.Brands),
		Quantity:      strings.TrimSpace(p.Quantity),
		ImageURL:      p.ImageURL,
		Categories:    p.Categories,
		NutriScore:    strings.ToLower(p.NutriscoreGrade),
		QuantityValue: parseQuantity(p.ProductQuantity),
		QuantityUnit:  p.ProductQuantityUnit,
	}, nil
}

// parseQuantity accepts product_quantity as a JSON number or a numeric
// string; anything else is treated as absent.
func parseQuantity(raw json.RawMessage) decimal.NullDecimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.NullDecimal{}
	}

	s := strings.Trim(string(raw), `"`)
	if s == "" {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(d)
}
