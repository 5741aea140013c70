// Package sqlite stores catalog records in a single SQLite table. It backs
// local development and the operator CLI when no DynamoDB table is
// available.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/pricofy/product-catalog/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	category     TEXT NOT NULL,
	product_id   TEXT NOT NULL,
	name         TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	price        TEXT NOT NULL DEFAULT '0',
	in_stock     INTEGER NOT NULL DEFAULT 1,
	translations TEXT,
	updated_at   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (category, product_id)
)`

const selectColumns = `category, product_id, name, description, price, in_stock, translations, updated_at`

// Store is a catalog store on a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key domain.Key) (*domain.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM products WHERE category = ? AND product_id = ?`,
		key.Category, key.ProductID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get %s: %w", domain.ErrBackend, key, err)
	}
	return rec, nil
}

// Query returns a category's records in insertion order. The filter is a
// case-sensitive substring match on description.
func (s *Store) Query(ctx context.Context, category, filter string) ([]domain.Record, error) {
	query := `SELECT ` + selectColumns + ` FROM products WHERE category = ?`
	args := []any{category}
	if filter != "" {
		query += ` AND instr(description, ?) > 0`
		args = append(args, filter)
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query %s: %w", domain.ErrBackend, category, err)
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan %s: %w", domain.ErrBackend, category, err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to query %s: %w", domain.ErrBackend, category, err)
	}
	return records, nil
}

// Put writes the full record. An existing row keeps its rowid, and with
// it its position in query results.
func (s *Store) Put(ctx context.Context, rec domain.Record) error {
	translations, err := encodeTranslations(rec.Translations)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackend, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (category, product_id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price = excluded.price,
			in_stock = excluded.in_stock,
			translations = excluded.translations,
			updated_at = excluded.updated_at`,
		rec.Category, rec.ProductID, rec.Name, rec.Description,
		rec.Price.String(), rec.InStock, translations, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to put %s: %w", domain.ErrBackend, rec.Key(), err)
	}
	return nil
}

// Update sets only the supplied columns plus updated_at.
func (s *Store) Update(ctx context.Context, key domain.Key, changes domain.Changes) (*domain.Record, error) {
	sets := []string{"updated_at = ?"}
	args := []any{domain.FormatTimestamp(changes.UpdatedAt)}

	if changes.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *changes.Name)
	}
	if changes.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *changes.Description)
	}
	if changes.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, changes.Price.String())
	}
	if changes.InStock != nil {
		sets = append(sets, "in_stock = ?")
		args = append(args, *changes.InStock)
	}
	if changes.Translations != nil {
		translations, err := encodeTranslations(changes.Translations)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrBackend, err)
		}
		sets = append(sets, "translations = ?")
		args = append(args, translations)
	}
	args = append(args, key.Category, key.ProductID)

	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET `+strings.Join(sets, ", ")+` WHERE category = ? AND product_id = ?`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to update %s: %w", domain.ErrBackend, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to update %s: %w", domain.ErrBackend, key, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	return s.Get(ctx, key)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.Record, error) {
	var (
		rec          domain.Record
		price        string
		translations sql.NullString
	)
	err := row.Scan(&rec.Category, &rec.ProductID, &rec.Name, &rec.Description,
		&price, &rec.InStock, &translations, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rec.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", price, err)
	}
	if translations.Valid && translations.String != "" {
		if err := json.Unmarshal([]byte(translations.String), &rec.Translations); err != nil {
			return nil, fmt.Errorf("invalid translations: %w", err)
		}
	}
	return &rec, nil
}

func encodeTranslations(m map[string]string) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode translations: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
