// Package export writes the shelf out as CSV or as a plain-text digest.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/freshness"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

// Entry is a single exported item with its freshness as of the export day.
type Entry struct {
	Item  *item.Item
	Tier  freshness.Tier
	Badge freshness.Badge
}

// csvHeader matches the importer's shelflife profile, so an export can be
// imported again.
var csvHeader = []string{"barcode", "name", "brand", "quantity", "expiry", "freshness", "username", "saved_at"}

// Service handles the export of saved items.
type Service struct {
	items *item.Service
	clock func() time.Time
}

// NewService creates a new export Service.
func NewService(items *item.Service) *Service {
	return &Service{items: items, clock: time.Now}
}

func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Export lists the items matching filter, soonest expiry first, and
// classifies each one against today.
func (s *Service) Export(ctx context.Context, filter item.ListFilter) ([]Entry, error) {
	items, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	today := expiry.DateOf(s.clock())

	entries := make([]Entry, 0, len(items))

	for _, it := range items {
		tier := freshness.Classify(it.Expiry, today)
		entries = append(entries, Entry{
			Item:  it,
			Tier:  tier,
			Badge: freshness.BadgeFor(tier),
		})
	}

	return entries, nil
}

// WriteCSV writes entries as comma-separated values with a header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, e := range entries {
		it := e.Item

		record := []string{
			it.Barcode,
			it.Name,
			it.Brand,
			it.Quantity,
			it.Expiry.String(),
			e.Badge.Text,
			it.Username,
			it.SavedAt.UTC().Format(time.RFC3339),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing item %s: %w", it.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Digest renders a short shopping-list style summary, one line per item.
func Digest(entries []Entry) string {
	var sb strings.Builder

	for _, e := range entries {
		name := e.Item.Name
		if name == "" {
			name = e.Item.Barcode
		}

		fmt.Fprintf(&sb, "* %s | %s | %s\n", e.Item.Expiry, name, e.Badge.Text)
	}

	return sb.String()
}
