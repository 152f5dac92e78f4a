package item

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=item
type Repository interface {
	AppendItem(ctx context.Context, it *Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	ListItems(ctx context.Context, filter ListFilter) ([]*Item, error)
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// WithClock replaces the time source used for SavedAt.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// AppendParams is the commit payload: barcode and expiry are required,
// everything else is optional.
type AppendParams struct {
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
	ExpiryRaw     string
}

type ListFilter struct {
	Username *string
	// ExpiringBy keeps items whose expiry is on or before this date.
	ExpiringBy *expiry.Date
}

func (s *Service) Append(ctx context.Context, params AppendParams) (*Item, error) {
	barcode := strings.TrimSpace(params.Barcode)
	if barcode == "" {
		return nil, ErrMissingBarcode
	}

	if params.Expiry.IsZero() {
		return nil, ErrMissingExpiry
	}

	it := &Item{
		ID:            uuid.New(),
		Username:      strings.TrimSpace(params.Username),
		Barcode:       barcode,
		Name:          params.Name,
		Brand:         params.Brand,
		Quantity:      params.Quantity,
		QuantityValue: params.QuantityValue,
		QuantityUnit:  params.QuantityUnit,
		ImageURL:      params.ImageURL,
		Categories:    params.Categories,
		NutriScore:    params.NutriScore,
		Expiry:        params.Expiry,
		ExpiryRaw:     params.ExpiryRaw,
		SavedAt:       s.clock().UTC(),
	}

	if err := s.repo.AppendItem(ctx, it); err != nil {
		return nil, fmt.Errorf("append item: %w", err)
	}

	return it, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.repo.GetItem(ctx, id)
}

// List returns items soonest-expiring first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Item, error) {
	return s.repo.ListItems(ctx, filter)
}
