package store

import (
	"context"
	"math"
	"sync"

	"github.com/cloudwatchw/backend/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory implementation of the weather
// record store, used in tests and single-node development.
type MemoryStore struct {
	mu      sync.RWMutex
	records []weather.Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends a new record. Existing records are never mutated.
func (s *MemoryStore) Insert(ctx context.Context, rec weather.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	return nil
}

// FindLatestNear returns the most recently observed record within tolerance
// degrees of the query point. Concurrent duplicate writes for the same place
// are resolved here: the greatest ObservedAt wins.
func (s *MemoryStore) FindLatestNear(ctx context.Context, coords weather.Coordinates, tolerance float64) (*weather.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *weather.Record
	for i := range s.records {
		rec := &s.records[i]
		if math.Abs(rec.Latitude-coords.Latitude) > tolerance ||
			math.Abs(rec.Longitude-coords.Longitude) > tolerance {
			continue
		}
		if best == nil || rec.ObservedAt.After(best.ObservedAt) {
			best = rec
		}
	}

	if best == nil {
		return nil, weather.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

// PurgeAll removes every record and reports the count.
func (s *MemoryStore) PurgeAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.records))
	s.records = nil
	return n, nil
}
