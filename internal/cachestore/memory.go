// Package cachestore provides recommendation Cache Store backends that do not
// need PostgreSQL: an embedded BadgerDB store and an in-process map.
package cachestore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/founder-match/internal/types"
)

// Option configures a store.
type Option func(*options)

type options struct {
	now       func() time.Time
	retention time.Duration
}

// WithClock replaces time.Now for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRetention drops records older than d on write (memory) or via key TTL
// (badger). Zero keeps everything until it is deleted.
func WithRetention(d time.Duration) Option {
	return func(o *options) { o.retention = d }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// MemoryStore keeps recommendation records in process memory. Contents are
// lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID][]types.Recommendation
	opts    options
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID][]types.Recommendation),
		opts:    buildOptions(opts),
	}
}

// GetRecommendations returns the subject's records created less than window ago.
func (s *MemoryStore) GetRecommendations(_ context.Context, subjectID uuid.UUID, window time.Duration) ([]types.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.opts.now()
	var out []types.Recommendation
	for _, rec := range s.records[subjectID] {
		if rec.IsFresh(now, window) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// DeleteRecommendations removes all records for the subject.
func (s *MemoryStore) DeleteRecommendations(_ context.Context, subjectID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, subjectID)
	return nil
}

// InsertRecommendations appends records for the subject. Records that break
// an invariant are rejected as a batch.
func (s *MemoryStore) InsertRecommendations(_ context.Context, subjectID uuid.UUID, records []types.Recommendation) error {
	if err := validateBatch(subjectID, records); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.records[subjectID]
	if s.opts.retention > 0 {
		cutoff := s.opts.now().Add(-s.opts.retention)
		kept := existing[:0]
		for _, rec := range existing {
			if rec.CreatedAt.After(cutoff) {
				kept = append(kept, rec)
			}
		}
		existing = kept
	}
	s.records[subjectID] = append(existing, records...)
	return nil
}

// Len returns the number of stored records for the subject, fresh or not.
func (s *MemoryStore) Len(subjectID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[subjectID])
}
