package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestIsValidLanguageCode(t *testing.T) {
	tests := []struct {
		code     string
		expected bool
	}{
		{"en", true},
		{"de", true},
		{"en-US", true},
		{"pt-BR", true},
		{"", false},
		{"e", false},
		{"ENGLISH", false},
		{"EN", false},
		{"eng", false},
		{"en-us", false},
		{"en_US", false},
		{"en-USA", false},
		{"en-", false},
		{" en", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := IsValidLanguageCode(tt.code); got != tt.expected {
				t.Errorf("IsValidLanguageCode(%q) = %v, want %v", tt.code, got, tt.expected)
			}
		})
	}
}

func TestChangesEmpty(t *testing.T) {
	if !(Changes{UpdatedAt: time.Now()}).Empty() {
		t.Error("changes with only UpdatedAt should be empty")
	}

	inStock := false
	if (Changes{InStock: &inStock}).Empty() {
		t.Error("changes with InStock=false should not be empty")
	}

	if (Changes{Translations: map[string]string{}}).Empty() {
		t.Error("changes with a translations map should not be empty")
	}
}

func TestChangesApply(t *testing.T) {
	rec := Record{
		Category:     "books",
		ProductID:    "b1",
		Name:         "Guide",
		Description:  "A guide",
		Price:        decimal.RequireFromString("9.99"),
		InStock:      true,
		Translations: map[string]string{"es": "Una guía"},
	}

	price := decimal.RequireFromString("12.50")
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	Changes{Price: &price, UpdatedAt: at}.Apply(&rec)

	if !rec.Price.Equal(price) {
		t.Errorf("Price = %s, want %s", rec.Price, price)
	}
	if rec.Description != "A guide" || rec.Name != "Guide" || !rec.InStock {
		t.Errorf("untouched fields changed: %+v", rec)
	}
	if rec.Translations["es"] != "Una guía" {
		t.Errorf("translations changed: %v", rec.Translations)
	}
	if rec.UpdatedAt != "2024-05-01T08:00:00Z" {
		t.Errorf("UpdatedAt = %q, want UTC timestamp", rec.UpdatedAt)
	}
}

func TestRecordClone(t *testing.T) {
	rec := Record{Translations: map[string]string{"es": "hola"}}
	clone := rec.Clone()
	clone.Translations["de"] = "hallo"

	if _, ok := rec.Translations["de"]; ok {
		t.Error("Clone shares the translations map with the original")
	}
}

func TestKeyString(t *testing.T) {
	k := Key{Category: "books", ProductID: "b1"}
	if got := k.String(); got != "books#b1" {
		t.Errorf("Key.String() = %q, want %q", got, "books#b1")
	}
}
