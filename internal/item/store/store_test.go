package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/shelflife/internal/database"
	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
	"github.com/MrJamesThe3rd/shelflife/internal/item/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := database.New(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := store.New(db, database.DriverSQLite)
	require.NoError(t, s.Migrate(context.Background()))

	return s
}

func newItem(user, barcode string, exp expiry.Date, savedAt time.Time) *item.Item {
	return &item.Item{
		ID:       uuid.New(),
		Username: user,
		Barcode:  barcode,
		Expiry:   exp,
		SavedAt:  savedAt,
	}
}

func TestStore_AppendAndGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	saved := time.Date(2025, time.November, 30, 9, 15, 0, 0, time.UTC)

	it := &item.Item{
		ID:            uuid.New(),
		Username:      "ana",
		Barcode:       "5000000000001",
		Name:          "Oat Milk",
		Brand:         "Oatly",
		Quantity:      "1 L",
		QuantityValue: decimal.NewNullDecimal(decimal.NewFromInt(1000)),
		QuantityUnit:  "ml",
		NutriScore:    "b",
		Expiry:        expiry.Date{Year: 2025, Month: time.December, Day: 1},
		ExpiryRaw:     "EXP 01/12/2025",
		SavedAt:       saved,
	}

	require.NoError(t, s.AppendItem(ctx, it))

	got, err := s.GetItem(ctx, it.ID)
	require.NoError(t, err)

	assert.Equal(t, it.ID, got.ID)
	assert.Equal(t, "ana", got.Username)
	assert.Equal(t, "Oat Milk", got.Name)
	assert.Equal(t, "Oatly", got.Brand)
	assert.Equal(t, "", got.ImageURL)
	assert.Equal(t, "ml", got.QuantityUnit)
	assert.True(t, got.QuantityValue.Valid)
	assert.True(t, got.QuantityValue.Decimal.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, it.Expiry, got.Expiry)
	assert.Equal(t, "EXP 01/12/2025", got.ExpiryRaw)
	assert.True(t, saved.Equal(got.SavedAt))
}

func TestStore_GetItem_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.GetItem(context.Background(), uuid.New())
	assert.ErrorIs(t, err, item.ErrNotFound)
}

func TestStore_AppendItem_DuplicateID(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	it := newItem("ana", "1", expiry.Date{Year: 2026, Month: time.January, Day: 2}, time.Now().UTC())

	require.NoError(t, s.AppendItem(ctx, it))
	assert.Error(t, s.AppendItem(ctx, it))
}

func TestStore_ListItems(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	base := time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC)

	items := []*item.Item{
		newItem("ana", "late", expiry.Date{Year: 2026, Month: time.March, Day: 2}, base),
		newItem("ana", "early", expiry.Date{Year: 2025, Month: time.November, Day: 29}, base),
		newItem("bo", "other", expiry.Date{Year: 2025, Month: time.December, Day: 1}, base),
		newItem("ana", "mid", expiry.Date{Year: 2025, Month: time.December, Day: 1}, base.Add(time.Hour)),
	}

	for _, it := range items {
		require.NoError(t, s.AppendItem(ctx, it))
	}

	type testCase struct {
		name   string
		filter item.ListFilter
		want   []string
	}

	ana := "ana"
	by := expiry.Date{Year: 2025, Month: time.December, Day: 1}

	tests := []testCase{
		{
			name:   "All",
			filter: item.ListFilter{},
			want:   []string{"early", "other", "mid", "late"},
		},
		{
			name:   "ByUser",
			filter: item.ListFilter{Username: &ana},
			want:   []string{"early", "mid", "late"},
		},
		{
			name:   "ExpiringBy",
			filter: item.ListFilter{Username: &ana, ExpiringBy: &by},
			want:   []string{"early", "mid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListItems(ctx, tt.filter)
			require.NoError(t, err)

			barcodes := make([]string, len(got))
			for i, it := range got {
				barcodes[i] = it.Barcode
			}

			assert.Equal(t, tt.want, barcodes)
		})
	}
}
