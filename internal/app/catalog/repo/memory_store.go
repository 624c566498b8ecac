package repo

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/light-bringer/catalog-service/internal/app/catalog/contracts"
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
	"github.com/light-bringer/catalog-service/internal/models"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// MemoryStore is an in-memory contracts.Store used by the test suites. It
// matches filters by evaluating their BSON rendering against stored
// records, so the same filters exercised against MongoDB work here.
type MemoryStore struct {
	mu      sync.RWMutex
	entity  models.Entity
	records map[string]domain.Record
	order   []string
}

// NewMemoryStore creates an empty in-memory store for one entity.
func NewMemoryStore(entity models.Entity) *MemoryStore {
	return &MemoryStore{
		entity:  entity,
		records: map[string]domain.Record{},
	}
}

// FindAll returns every stored record matching the filter, in insertion order.
func (s *MemoryStore) FindAll(_ context.Context, f query.Filter) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matcher := f.Bson()
	out := make([]domain.Record, 0, len(s.order))
	for _, key := range s.order {
		rec := s.records[key]
		if matches(rec, matcher) {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

// FindOne returns the first stored record matching the filter.
func (s *MemoryStore) FindOne(ctx context.Context, f query.Filter) (domain.Record, error) {
	records, err := s.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNotFound
	}
	return records[0], nil
}

// Insert stores a new record, rejecting duplicate business keys.
func (s *MemoryStore) Insert(_ context.Context, rec domain.Record) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.String(s.entity.KeyField)
	if _, exists := s.records[key]; exists {
		return nil, domain.ErrDuplicateKey
	}
	s.records[key] = rec.Clone()
	s.order = append(s.order, key)
	return rec.Clone(), nil
}

// Replace overwrites the stored record located by the filter. When rec
// carries a new business key the record moves to the new key, keeping its
// insertion position.
func (s *MemoryStore) Replace(_ context.Context, f query.Filter, rec domain.Record) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matcher := f.Bson()
	for i, key := range s.order {
		if !matches(s.records[key], matcher) {
			continue
		}
		newKey := rec.String(s.entity.KeyField)
		if newKey != key {
			if _, exists := s.records[newKey]; exists {
				return nil, domain.ErrDuplicateKey
			}
			delete(s.records, key)
			s.order[i] = newKey
		}
		s.records[newKey] = rec.Clone()
		return rec.Clone(), nil
	}
	return nil, domain.ErrNotFound
}

// Delete removes the record with the given business key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[key]; !exists {
		return domain.ErrNotFound
	}
	delete(s.records, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// PatchFields sets individual fields on the stored record.
func (s *MemoryStore) PatchFields(_ context.Context, key string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.records[key]
	if !exists {
		return domain.ErrNotFound
	}
	for field, value := range fields {
		rec[field] = value
	}
	return nil
}

// Count returns how many stored records match the filter.
func (s *MemoryStore) Count(ctx context.Context, f query.Filter) (int64, error) {
	records, err := s.FindAll(ctx, f)
	if err != nil {
		return 0, err
	}
	return int64(len(records)), nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// matches evaluates a BSON filter document against a record. Only the
// operators the filter package produces are supported: plain equality and
// $in membership.
func matches(rec domain.Record, filter bson.M) bool {
	for field, want := range filter {
		got := rec[field]
		switch cond := want.(type) {
		case bson.M:
			values, _ := cond["$in"].([]string)
			found := false
			for _, v := range values {
				if got == v {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if got != want {
				return false
			}
		}
	}
	return true
}

var _ contracts.Store = (*MemoryStore)(nil)
