// Package memory is an in-process catalog store used by tests and
// ephemeral local runs.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pricofy/product-catalog/internal/domain"
)

type Store struct {
	mu      sync.RWMutex
	records map[domain.Key]domain.Record
	// order keeps insertion order per category, mirroring a sort-key-less
	// partition scan.
	order map[string][]string
}

func New() *Store {
	return &Store{
		records: make(map[domain.Key]domain.Record),
		order:   make(map[string][]string),
	}
}

func (s *Store) Get(_ context.Context, key domain.Key) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	out := rec.Clone()
	return &out, nil
}

func (s *Store) Query(_ context.Context, category, filter string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.order[category]
	out := make([]domain.Record, 0, len(ids))
	for _, id := range ids {
		rec := s.records[domain.Key{Category: category, ProductID: id}]
		if filter != "" && !strings.Contains(rec.Description, filter) {
			continue
		}
		out = append(out, rec.Clone())
	}
	return out, nil
}

// Put writes the full record, replacing any existing one.
func (s *Store) Put(_ context.Context, rec domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rec.Key()
	if _, ok := s.records[key]; !ok {
		s.order[key.Category] = append(s.order[key.Category], key.ProductID)
	}
	s.records[key] = rec.Clone()
	return nil
}

func (s *Store) Update(_ context.Context, key domain.Key, changes domain.Changes) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	rec = rec.Clone()
	changes.Apply(&rec)
	s.records[key] = rec
	out := rec.Clone()
	return &out, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
