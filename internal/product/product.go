package product

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("product not found in open food facts")

// Product is the subset of Open Food Facts metadata shown during a scan and
// stored with the item. Empty strings mean the field was absent.
type Product struct {
	Barcode    string
	Name       string
	Brand      string
	Quantity   string
	ImageURL   string
	Categories string
	NutriScore string

	// QuantityValue and QuantityUnit are the machine-readable form of Quantity
	// when Open Food Facts provides it ("1000" + "ml" for "1 L").
	QuantityValue decimal.NullDecimal
	QuantityUnit  string
}

// DisplayName falls back to the barcode when the product has no name.
func (p *Product) DisplayName() string {
	if p == nil {
		return ""
	}

	if p.Name != "" {
		return p.Name
	}

	return p.Barcode
}
