// Package catalog translates catalog reads and writes into key-value store
// operations. It owns field validation and the partial-update merge.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pricofy/product-catalog/internal/domain"
)

// Store is the key-value backend the accessor writes through.
//
// Get and Update return an error wrapping domain.ErrNotFound when the key
// does not exist. Update must only touch the fields present in Changes.
type Store interface {
	Get(ctx context.Context, key domain.Key) (*domain.Record, error)
	Query(ctx context.Context, category, filter string) ([]domain.Record, error)
	Put(ctx context.Context, rec domain.Record) error
	Update(ctx context.Context, key domain.Key, changes domain.Changes) (*domain.Record, error)
}

// Accessor implements the catalog operations on top of a Store.
type Accessor struct {
	store Store
	now   func() time.Time
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithClock overrides the time source used for updatedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Accessor) { a.now = now }
}

// New creates an Accessor backed by store.
func New(store Store, opts ...Option) *Accessor {
	a := &Accessor{store: store, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Query returns the records of a category in store order, optionally
// restricted to those whose description contains filter.
func (a *Accessor) Query(ctx context.Context, category, filter string) ([]domain.Record, error) {
	if isBlank(category) {
		return nil, fmt.Errorf("%w: category is required", domain.ErrValidation)
	}

	records, err := a.store.Query(ctx, category, filter)
	if err != nil {
		return nil, backendError("query", err)
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

// Get looks up a single record by identity.
func (a *Accessor) Get(ctx context.Context, category, productID string) (*domain.Record, error) {
	key, err := requireKey(category, productID)
	if err != nil {
		return nil, err
	}

	rec, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, backendError("get", err)
	}
	return rec, nil
}

// Create writes a new record. An existing record with the same identity is
// overwritten.
func (a *Accessor) Create(ctx context.Context, in domain.CreateInput) (*domain.Record, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	rec := domain.Record{
		Category:    in.Category,
		ProductID:   in.ProductID,
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		InStock:     true,
		UpdatedAt:   domain.FormatTimestamp(a.now()),
	}
	if isBlank(rec.Name) {
		rec.Name = in.ProductID
	}
	if in.InStock != nil {
		rec.InStock = *in.InStock
	}

	if err := a.store.Put(ctx, rec); err != nil {
		return nil, backendError("put", err)
	}
	return &rec, nil
}

// PartialUpdate sets only the supplied fields and returns the full record
// as it stands after the update.
func (a *Accessor) PartialUpdate(ctx context.Context, in domain.UpdateInput) (*domain.Record, error) {
	key, err := requireKey(in.Category, in.ProductID)
	if err != nil {
		return nil, err
	}

	changes := domain.Changes{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		InStock:     in.InStock,
	}
	if changes.Empty() {
		return nil, fmt.Errorf("%w: at least one of description, price, name or inStock is required", domain.ErrValidation)
	}
	if in.Description != nil && isBlank(*in.Description) {
		return nil, fmt.Errorf("%w: description must not be empty", domain.ErrValidation)
	}
	if in.Name != nil && isBlank(*in.Name) {
		return nil, fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be a non-negative number", domain.ErrValidation)
	}
	changes.UpdatedAt = a.now()

	rec, err := a.store.Update(ctx, key, changes)
	if err != nil {
		return nil, backendError("update", err)
	}
	return rec, nil
}

// SetTranslations replaces the translations map of an existing record with
// a targeted field update. Callers merge before calling.
func (a *Accessor) SetTranslations(ctx context.Context, key domain.Key, translations map[string]string) (*domain.Record, error) {
	if _, err := requireKey(key.Category, key.ProductID); err != nil {
		return nil, err
	}
	if translations == nil {
		translations = map[string]string{}
	}

	rec, err := a.store.Update(ctx, key, domain.Changes{
		Translations: translations,
		UpdatedAt:    a.now(),
	})
	if err != nil {
		return nil, backendError("update translations", err)
	}
	return rec, nil
}

func validateCreate(in domain.CreateInput) error {
	var missing []string
	if isBlank(in.Category) {
		missing = append(missing, "category")
	}
	if isBlank(in.ProductID) {
		missing = append(missing, "productId")
	}
	if isBlank(in.Description) {
		missing = append(missing, "description")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must be a non-negative number", domain.ErrValidation)
	}
	return nil
}

func requireKey(category, productID string) (domain.Key, error) {
	if isBlank(category) {
		return domain.Key{}, fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	if isBlank(productID) {
		return domain.Key{}, fmt.Errorf("%w: productId is required", domain.ErrValidation)
	}
	return domain.Key{Category: category, ProductID: productID}, nil
}

// backendError classifies store failures. Errors already carrying a kind
// pass through unchanged.
func backendError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrBackend) {
		return err
	}
	return fmt.Errorf("%w: %s failed: %w", domain.ErrBackend, op, err)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
