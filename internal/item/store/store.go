package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/shelflife/internal/database"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
)

// Store persists items in PostgreSQL or SQLite. Queries are written with "?"
// placeholders and rebound for PostgreSQL.
type Store struct {
	db     *sql.DB
	driver string
}

func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS items (
	id             UUID PRIMARY KEY,
	username       TEXT NOT NULL DEFAULT '',
	barcode        TEXT NOT NULL,
	name           TEXT,
	brand          TEXT,
	quantity       TEXT,
	quantity_value NUMERIC,
	quantity_unit  TEXT,
	image_url      TEXT,
	categories     TEXT,
	nutri_score    TEXT,
	expiry         TEXT NOT NULL,
	expiry_raw     TEXT,
	saved_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS items_username_expiry_idx ON items (username, expiry);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS items (
	id             TEXT PRIMARY KEY,
	username       TEXT NOT NULL DEFAULT '',
	barcode        TEXT NOT NULL,
	name           TEXT,
	brand          TEXT,
	quantity       TEXT,
	quantity_value TEXT,
	quantity_unit  TEXT,
	image_url      TEXT,
	categories     TEXT,
	nutri_score    TEXT,
	expiry         TEXT NOT NULL,
	expiry_raw     TEXT,
	saved_at       TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS items_username_expiry_idx ON items (username, expiry);
`

// Migrate creates the items table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.driver == database.DriverPostgres {
		schema = postgresSchema
	}

	if err := database.ExecScript(ctx, s.db, schema); err != nil {
		return fmt.Errorf("migrating items: %w", err)
	}

	return nil
}

func (s *Store) rebind(query string) string {
	return database.Rebind(s.driver, query)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectItemColumns = `
	id, username, barcode, name, brand, quantity, quantity_value, quantity_unit,
	image_url, categories, nutri_score, expiry, expiry_raw, saved_at
`

func scanItem(s scanner) (*item.Item, error) {
	var it item.Item

	var name, brand, quantity, unit, imageURL, categories, nutri, raw sql.NullString

	if err := s.Scan(
		&it.ID, &it.Username, &it.Barcode, &name, &brand, &quantity, &it.QuantityValue, &unit,
		&imageURL, &categories, &nutri, &it.Expiry, &raw, &it.SavedAt,
	); err != nil {
		return nil, err
	}

	it.Name = name.String
	it.Brand = brand.String
	it.Quantity = quantity.String
	it.QuantityUnit = unit.String
	it.ImageURL = imageURL.String
	it.Categories = categories.String
	it.NutriScore = nutri.String
	it.ExpiryRaw = raw.String
	it.SavedAt = it.SavedAt.UTC()

	return &it, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) AppendItem(ctx context.Context, it *item.Item) error {
	query := s.rebind(`
		INSERT INTO items (
			id, username, barcode, name, brand, quantity, quantity_value, quantity_unit,
			image_url, categories, nutri_score, expiry, expiry_raw, saved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.ExecContext(ctx, query,
		it.ID,
		it.Username,
		it.Barcode,
		nullString(it.Name),
		nullString(it.Brand),
		nullString(it.Quantity),
		it.QuantityValue,
		nullString(it.QuantityUnit),
		nullString(it.ImageURL),
		nullString(it.Categories),
		nullString(it.NutriScore),
		it.Expiry,
		nullString(it.ExpiryRaw),
		it.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("appending item: %w", err)
	}

	return nil
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	query := s.rebind(`SELECT ` + selectItemColumns + ` FROM items WHERE id = ?`)

	it, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, item.ErrNotFound
		}

		return nil, fmt.Errorf("getting item: %w", err)
	}

	return it, nil
}

func (s *Store) ListItems(ctx context.Context, filter item.ListFilter) ([]*item.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM items WHERE 1 = 1`

	var args []any

	if filter.Username != nil {
		query += " AND username = ?"

		args = append(args, *filter.Username)
	}

	if filter.ExpiringBy != nil {
		query += " AND expiry <= ?"

		args = append(args, *filter.ExpiringBy)
	}

	query += " ORDER BY expiry ASC, saved_at ASC"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []*item.Item

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	return items, nil
}
