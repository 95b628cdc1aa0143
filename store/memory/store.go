// Package memory provides an in-memory Store implementation for unit testing
// and dry runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xraph/herald"
	"github.com/xraph/herald/correlation"
	"github.com/xraph/herald/id"
	"github.com/xraph/herald/record"
	heraldstore "github.com/xraph/herald/store"
)

// compile-time interface check.
var _ heraldstore.Store = (*Store)(nil)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu sync.RWMutex

	correlations map[string]*correlation.Entry // keyed by entity ID
	records      map[string]*record.Record     // keyed by ID string

	closed bool
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		correlations: make(map[string]*correlation.Entry),
		records:      make(map[string]*record.Record),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Migrate is a no-op for the in-memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports ErrStoreClosed after Close.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return herald.ErrStoreClosed
	}
	return nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ──────────────────────────────────────────────────
// correlation.Store
// ──────────────────────────────────────────────────

// GetCorrelation returns a copy of the entry for entityID.
func (s *Store) GetCorrelation(_ context.Context, entityID string) (*correlation.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.correlations[entityID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", herald.ErrCorrelationNotFound, entityID)
	}
	cp := *e
	return &cp, nil
}

// PutCorrelation stores e, keeping the original CreatedAt on overwrite.
func (s *Store) PutCorrelation(_ context.Context, e *correlation.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return herald.ErrStoreClosed
	}

	cp := *e
	now := time.Now().UTC()
	if prev, ok := s.correlations[e.EntityID]; ok {
		cp.CreatedAt = prev.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	s.correlations[e.EntityID] = &cp
	return nil
}

// DeleteCorrelation removes the entry for entityID.
func (s *Store) DeleteCorrelation(_ context.Context, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.correlations[entityID]; !ok {
		return fmt.Errorf("%w: %s", herald.ErrCorrelationNotFound, entityID)
	}
	delete(s.correlations, entityID)
	return nil
}

// ──────────────────────────────────────────────────
// record.Store
// ──────────────────────────────────────────────────

// CreateRecord stores a copy of r.
func (s *Store) CreateRecord(_ context.Context, r *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return herald.ErrStoreClosed
	}
	cp := *r
	s.records[r.ID.String()] = &cp
	return nil
}

// UpdateRecord replaces an existing record.
func (s *Store) UpdateRecord(_ context.Context, r *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := r.ID.String()
	if _, ok := s.records[key]; !ok {
		return fmt.Errorf("%w: %s", herald.ErrRecordNotFound, key)
	}
	cp := *r
	cp.UpdatedAt = time.Now().UTC()
	s.records[key] = &cp
	return nil
}

// GetRecord returns a copy of the record with recID.
func (s *Store) GetRecord(_ context.Context, recID id.ID) (*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[recID.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", herald.ErrRecordNotFound, recID)
	}
	cp := *r
	return &cp, nil
}

// ListRecords returns matching records newest first.
func (s *Store) ListRecords(_ context.Context, opts record.ListOpts) ([]*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*record.Record
	for _, r := range s.records {
		if !opts.Matches(r) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return applyPagination(out, opts.Offset, opts.Limit), nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func applyPagination[T any](items []*T, offset, limit int) []*T {
	if offset > 0 && offset < len(items) {
		items = items[offset:]
	} else if offset >= len(items) {
		return nil
	}

	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}
