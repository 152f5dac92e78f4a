// Package cooked saves home-cooked dishes to the shelf with an expiry date
// estimated from a photo.
package cooked

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
	"github.com/MrJamesThe3rd/shelflife/internal/ocr"
)

// BarcodePrefix marks items that were cooked rather than scanned.
const BarcodePrefix = "COOKED-"

const defaultName = "Cooked meal"

var ErrNoEstimate = errors.New("estimate carries no usable expiry date")

//go:generate mockgen -source=service.go -destination=service_mock.go -package=cooked

type Estimator interface {
	EstimateCooked(
		ctx context.Context,
		image io.Reader,
		filename string,
		storage ocr.Storage,
		cookedAt *time.Time,
	) (*ocr.CookedEstimate, error)
}

type Service struct {
	estimator Estimator
	items     *item.Service
	clock     func() time.Time
}

func NewService(estimator Estimator, items *item.Service) *Service {
	return &Service{estimator: estimator, items: items, clock: time.Now}
}

func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

type SaveParams struct {
	Username string
	Image    io.Reader
	Filename string
	Storage  ocr.Storage
	CookedAt *time.Time
}

// Result pairs the saved item with the estimate it came from.
type Result struct {
	Item     *item.Item
	Estimate *ocr.CookedEstimate
}

// Save asks the estimator how long the dish keeps and appends it as an item.
func (s *Service) Save(ctx context.Context, params SaveParams) (*Result, error) {
	est, err := s.estimator.EstimateCooked(ctx, params.Image, params.Filename, params.Storage, params.CookedAt)
	if err != nil {
		return nil, fmt.Errorf("estimating expiry: %w", err)
	}

	now := s.clock()

	exp, ok := estimatedExpiry(est, params.CookedAt, now)
	if !ok {
		return nil, ErrNoEstimate
	}

	name := strings.TrimSpace(est.FoodName)
	if name == "" {
		name = defaultName
	}

	saved, err := s.items.Append(ctx, item.AppendParams{
		Username:   params.Username,
		Barcode:    BarcodePrefix + strconv.FormatInt(now.UnixMilli(), 10),
		Name:       name,
		Categories: est.Category,
		Expiry:     exp,
		ExpiryRaw:  strings.TrimSpace("Estimated: " + est.Reason),
	})
	if err != nil {
		return nil, err
	}

	return &Result{Item: saved, Estimate: est}, nil
}

// estimatedExpiry reads the service's date, falling back to counting
// DaysAfterCooking from the cooking day.
func estimatedExpiry(est *ocr.CookedEstimate, cookedAt *time.Time, now time.Time) (expiry.Date, bool) {
	if d, ok := expiry.Parse(est.ExpiryDate, now.Year()); ok {
		return d, true
	}

	if est.DaysAfterCooking <= 0 {
		return expiry.Unparseable, false
	}

	from := now
	if cookedAt != nil {
		from = *cookedAt
	}

	return expiry.DateOf(from).AddDays(est.DaysAfterCooking), true
}

// IsCooked reports whether barcode was assigned to a cooked dish.
func IsCooked(barcode string) bool {
	return strings.HasPrefix(barcode, BarcodePrefix)
}
