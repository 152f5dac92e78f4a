package importer

import "strings"

// Profile describes the column layout of one pantry list format.
// Header names are compared case-insensitively.
type Profile struct {
	Name        string
	BarcodeCol  string
	ExpiryCol   string
	NameCol     string
	BrandCol    string
	QuantityCol string
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	return []string{p.BarcodeCol, p.ExpiryCol}
}

// profiles is the ordered list of formats to try during auto-detection.
var profiles = []Profile{
	{
		Name:        "shelflife",
		BarcodeCol:  "barcode",
		ExpiryCol:   "expiry",
		NameCol:     "name",
		BrandCol:    "brand",
		QuantityCol: "quantity",
	},
	{
		Name:        "inventory",
		BarcodeCol:  "ean",
		ExpiryCol:   "best before",
		NameCol:     "product",
		BrandCol:    "brand",
		QuantityCol: "size",
	},
	{
		Name:        "validade",
		BarcodeCol:  "código de barras",
		ExpiryCol:   "validade",
		NameCol:     "produto",
		BrandCol:    "marca",
		QuantityCol: "quantidade",
	},
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
