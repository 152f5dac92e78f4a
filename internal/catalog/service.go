// Package catalog remembers products already fetched from Open Food Facts so
// a barcode scanned twice is only looked up once.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/shelflife/internal/product"
)

// ErrNotCached is returned by a Repository that has no entry for a barcode.
var ErrNotCached = errors.New("product not cached")

//go:generate mockgen -source=service.go -destination=service_mock.go -package=catalog

type Repository interface {
	FindProduct(ctx context.Context, barcode string) (*product.Product, error)
	SaveProduct(ctx context.Context, p *product.Product) error
}

// Remote is the upstream product database.
type Remote interface {
	Lookup(ctx context.Context, barcode string) (*product.Product, error)
}

type Service struct {
	repo   Repository
	remote Remote
}

func NewService(repo Repository, remote Remote) *Service {
	return &Service{repo: repo, remote: remote}
}

// Lookup returns the cached product for barcode, falling back to the remote
// and remembering what it finds. A failure to write the cache is logged and
// does not fail the lookup.
func (s *Service) Lookup(ctx context.Context, barcode string) (*product.Product, error) {
	p, err := s.repo.FindProduct(ctx, barcode)
	if err == nil {
		return p, nil
	}

	if !errors.Is(err, ErrNotCached) {
		slog.Warn("product cache read failed", "barcode", barcode, "error", err)
	}

	p, err = s.remote.Lookup(ctx, barcode)
	if err != nil {
		return nil, err
	}

	// Open Food Facts may answer with a normalised code; cache under the one
	// that was scanned so the next scan hits.
	cached := *p
	cached.Barcode = barcode

	if err := s.repo.SaveProduct(ctx, &cached); err != nil {
		slog.Warn("product cache write failed", "barcode", barcode, "error", err)
	}

	return p, nil
}

// Learn stores a product directly, e.g. one entered by hand for a barcode the
// remote doesn't know.
func (s *Service) Learn(ctx context.Context, p *product.Product) error {
	if p == nil || p.Barcode == "" {
		return errors.New("learn product: missing barcode")
	}

	if err := s.repo.SaveProduct(ctx, p); err != nil {
		return fmt.Errorf("learn product: %w", err)
	}

	return nil
}
