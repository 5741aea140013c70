// Package domain contains the core domain types for the product catalog.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Key identifies a record. It is the sole identity of a catalog entry.
type Key struct {
	Category  string
	ProductID string
}

// String renders the key the way it appears in logs.
func (k Key) String() string {
	return k.Category + "#" + k.ProductID
}

// Record is one catalog entry.
type Record struct {
	Category     string            `json:"category"`
	ProductID    string            `json:"productId"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Price        decimal.Decimal   `json:"price"`
	InStock      bool              `json:"inStock"`
	Translations map[string]string `json:"translations,omitempty"`
	UpdatedAt    string            `json:"updatedAt,omitempty"`
}

// Key returns the identity of the record.
func (r Record) Key() Key {
	return Key{Category: r.Category, ProductID: r.ProductID}
}

// Clone returns a copy that shares no mutable state with r.
func (r Record) Clone() Record {
	out := r
	if r.Translations != nil {
		out.Translations = make(map[string]string, len(r.Translations))
		for lang, text := range r.Translations {
			out.Translations[lang] = text
		}
	}
	return out
}

// CreateInput carries the fields accepted by the create operation.
// Price and InStock are pointers so that "absent" can be told apart from
// the zero value.
type CreateInput struct {
	Category    string           `json:"category"`
	ProductID   string           `json:"productId"`
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	InStock     *bool            `json:"inStock,omitempty"`
}

// UpdateInput carries a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Category    string           `json:"category"`
	ProductID   string           `json:"productId"`
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	InStock     *bool            `json:"inStock,omitempty"`
}

// Changes is a targeted field update understood by every store.
// Only non-nil fields are written; UpdatedAt is always written.
type Changes struct {
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	InStock      *bool
	Translations map[string]string
	UpdatedAt    time.Time
}

// Empty reports whether no record field besides UpdatedAt would change.
func (c Changes) Empty() bool {
	return c.Name == nil && c.Description == nil && c.Price == nil &&
		c.InStock == nil && c.Translations == nil
}

// Apply writes the changes onto r. Stores without a native field-level
// update use it to emulate one.
func (c Changes) Apply(r *Record) {
	if c.Name != nil {
		r.Name = *c.Name
	}
	if c.Description != nil {
		r.Description = *c.Description
	}
	if c.Price != nil {
		r.Price = *c.Price
	}
	if c.InStock != nil {
		r.InStock = *c.InStock
	}
	if c.Translations != nil {
		r.Translations = make(map[string]string, len(c.Translations))
		for lang, text := range c.Translations {
			r.Translations[lang] = text
		}
	}
	r.UpdatedAt = FormatTimestamp(c.UpdatedAt)
}

// TranslationResult is the outcome of a translate operation.
type TranslationResult struct {
	OriginalText   string `json:"originalText"`
	TranslatedText string `json:"translatedText"`
	Language       string `json:"language"`
	CacheHit       bool   `json:"cacheHit"`
}

// FormatTimestamp renders t as the ISO-8601 string stored in updatedAt.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
