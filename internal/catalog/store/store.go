package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/shelflife/internal/catalog"
	"github.com/MrJamesThe3rd/shelflife/internal/database"
	"github.com/MrJamesThe3rd/shelflife/internal/product"
)

type Store struct {
	db     *sql.DB
	driver string
	clock  func() time.Time
}

func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver, clock: time.Now}
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	barcode        TEXT PRIMARY KEY,
	name           TEXT,
	brand          TEXT,
	quantity       TEXT,
	quantity_value TEXT,
	quantity_unit  TEXT,
	image_url      TEXT,
	categories     TEXT,
	nutri_score    TEXT,
	fetched_at     TIMESTAMP NOT NULL
)
`

// Migrate creates the products table if it does not exist. The schema is
// portable, so both drivers share it.
func (s *Store) Migrate(ctx context.Context) error {
	if err := database.ExecScript(ctx, s.db, schema); err != nil {
		return fmt.Errorf("migrating products: %w", err)
	}

	return nil
}

func (s *Store) FindProduct(ctx context.Context, barcode string) (*product.Product, error) {
	query := database.Rebind(s.driver, `
		SELECT barcode, name, brand, quantity, quantity_value, quantity_unit,
			image_url, categories, nutri_score
		FROM products
		WHERE barcode = ?
	`)

	var p product.Product

	var name, brand, quantity, unit, imageURL, categories, nutri sql.NullString

	err := s.db.QueryRowContext(ctx, query, barcode).Scan(
		&p.Barcode, &name, &brand, &quantity, &p.QuantityValue, &unit,
		&imageURL, &categories, &nutri,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotCached
		}

		return nil, fmt.Errorf("finding product: %w", err)
	}

	p.Name = name.String
	p.Brand = brand.String
	p.Quantity = quantity.String
	p.QuantityUnit = unit.String
	p.ImageURL = imageURL.String
	p.Categories = categories.String
	p.NutriScore = nutri.String

	return &p, nil
}

// SaveProduct inserts or refreshes the cached entry for p.Barcode.
func (s *Store) SaveProduct(ctx context.Context, p *product.Product) error {
	query := database.Rebind(s.driver, `
		INSERT INTO products (
			barcode, name, brand, quantity, quantity_value, quantity_unit,
			image_url, categories, nutri_score, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (barcode) DO UPDATE SET
			name = excluded.name,
			brand = excluded.brand,
			quantity = excluded.quantity,
			quantity_value = excluded.quantity_value,
			quantity_unit = excluded.quantity_unit,
			image_url = excluded.image_url,
			categories = excluded.categories,
			nutri_score = excluded.nutri_score,
			fetched_at = excluded.fetched_at
	`)

	_, err := s.db.ExecContext(ctx, query,
		p.Barcode,
		nullString(p.Name),
		nullString(p.Brand),
		nullString(p.Quantity),
		p.QuantityValue,
		nullString(p.QuantityUnit),
		nullString(p.ImageURL),
		nullString(p.Categories),
		nullString(p.NutriScore),
		s.clock().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving product: %w", err)
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
