// Package memory is an in-process fake of domain.Store, adapted from
// Iksolot21-URL-Shortener's internal/storage/memory package. It backs
// the business-logic unit tests in internal/slugfiller, internal/writesvc
// and internal/redirectsvc so those tests don't need a live Postgres.
package memory

import (
	"context"
	"sync"

	"github.com/shortnr/urlshort/internal/domain"
)

type Store struct {
	mu   sync.RWMutex
	rows map[string]domain.Mapping
}

func New() *Store {
	return &Store{rows: make(map[string]domain.Mapping)}
}

var _ domain.Store = (*Store)(nil)

func (s *Store) Insert(_ context.Context, m domain.Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[m.Slug]; ok {
		return domain.ErrDuplicateKey
	}
	s.rows[m.Slug] = m
	return nil
}

func (s *Store) Get(_ context.Context, slug string) (domain.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[slug]
	if !ok {
		return domain.Mapping{}, domain.ErrNotFound
	}
	return row, nil
}

func (s *Store) ExistingSlugs(_ context.Context, candidates []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if _, ok := s.rows[c]; ok {
			result[c] = true
		}
	}
	return result, nil
}

// Seed directly inserts a mapping, bypassing duplicate-key checks, for
// test setup.
func (s *Store) Seed(m domain.Mapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[m.Slug] = m
}

// Len reports the number of rows currently stored, for assertions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
