package item

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
)

var (
	ErrNotFound       = errors.New("item not found")
	ErrMissingBarcode = errors.New("barcode is required")
	ErrMissingExpiry  = errors.New("expiry date is required")
)

// Item is a committed acquisition. Items are only ever appended.
type Item struct {
	ID            uuid.UUID
	Username      string
	Barcode       string
	Name          string
	Brand         string
	Quantity      string
	QuantityValue decimal.NullDecimal
	QuantityUnit  string
	ImageURL      string
	Categories    string
	NutriScore    string
	Expiry        expiry.Date
	ExpiryRaw     string // label text the date was read from
	SavedAt       time.Time
}
