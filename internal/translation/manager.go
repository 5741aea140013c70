// Package translation wraps a translation backend with a read-through cache
// kept inside the catalog record itself.
package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/pricofy/product-catalog/internal/domain"
	"github.com/pricofy/product-catalog/internal/obs"
)

// Translator is a text translation backend. The source language is
// detected by the backend.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Records is the slice of the catalog accessor the manager depends on.
type Records interface {
	Get(ctx context.Context, category, productID string) (*domain.Record, error)
	SetTranslations(ctx context.Context, key domain.Key, translations map[string]string) (*domain.Record, error)
}

// Manager serves translations of record descriptions, calling the backend
// at most once per (record, language) while the cached entry survives.
type Manager struct {
	records    Records
	translator Translator
}

// NewManager creates a Manager.
func NewManager(records Records, translator Translator) *Manager {
	return &Manager{records: records, translator: translator}
}

// Translate returns the description of a record in targetLang.
//
// The read, the backend call and the write-back are not atomic. Two
// concurrent misses for the same record may both call the backend; each
// writer merges into the map it read, so no cached language is dropped by
// its own write, but the later write decides the final map.
func (m *Manager) Translate(ctx context.Context, category, productID, targetLang string) (*domain.TranslationResult, error) {
	if !domain.IsValidLanguageCode(targetLang) {
		return nil, fmt.Errorf("%w: invalid language code %q", domain.ErrValidation, targetLang)
	}

	rec, err := m.records.Get(ctx, category, productID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(rec.Description) == "" {
		return nil, fmt.Errorf("%w: record %s has no description to translate", domain.ErrValidation, rec.Key())
	}

	if cached, ok := rec.Translations[targetLang]; ok {
		obs.Logger.Info("translation_cache_hit", "key", rec.Key().String(), "language", targetLang)
		return &domain.TranslationResult{
			OriginalText:   rec.Description,
			TranslatedText: cached,
			Language:       targetLang,
			CacheHit:       true,
		}, nil
	}

	obs.Logger.Info("translation_backend_call", "key", rec.Key().String(), "language", targetLang)
	translated, err := m.translator.Translate(ctx, rec.Description, targetLang)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTranslation, err)
	}
	if strings.TrimSpace(translated) == "" {
		return nil, fmt.Errorf("%w: backend returned no text for %s", domain.ErrTranslation, targetLang)
	}

	merged := make(map[string]string, len(rec.Translations)+1)
	for lang, text := range rec.Translations {
		merged[lang] = text
	}
	merged[targetLang] = translated

	if _, err := m.records.SetTranslations(ctx, rec.Key(), merged); err != nil {
		return nil, err
	}

	return &domain.TranslationResult{
		OriginalText:   rec.Description,
		TranslatedText: translated,
		Language:       targetLang,
		CacheHit:       false,
	}, nil
}
