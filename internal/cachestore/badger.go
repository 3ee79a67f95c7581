package cachestore

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/jonathan/founder-match/internal/logging"
	"github.com/jonathan/founder-match/internal/types"
)

// Key layout: rec:<subject>:<created_at unix nanos, zero padded>:<candidate>.
// Keys for one subject sort by creation time.
const recKeyPrefix = "rec:"

func subjectPrefix(subjectID uuid.UUID) []byte {
	return []byte(recKeyPrefix + subjectID.String() + ":")
}

func recordKey(rec *types.Recommendation) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", recKeyPrefix, rec.SubjectID, rec.CreatedAt.UnixNano(), rec.CandidateID))
}

// BadgerStore persists recommendation records in an embedded BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	opts   options
	ownsDB bool
}

// OpenBadger opens (or creates) a BadgerDB at path and returns a store that
// closes it on Close.
func OpenBadger(path string, opts ...Option) (*BadgerStore, error) {
	bopts := badger.DefaultOptions(path)
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for recommendations: %w", err)
	}
	s := NewBadgerStore(db, opts...)
	s.ownsDB = true
	return s, nil
}

// NewBadgerStore wraps an already open database.
func NewBadgerStore(db *badger.DB, opts ...Option) *BadgerStore {
	return &BadgerStore{db: db, opts: buildOptions(opts)}
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

// GetRecommendations returns the subject's records created less than window
// ago. Rows that fail to decode or validate are skipped.
func (s *BadgerStore) GetRecommendations(ctx context.Context, subjectID uuid.UUID, window time.Duration) ([]types.Recommendation, error) {
	now := s.opts.now()
	var out []types.Recommendation

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := subjectPrefix(subjectID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var rec types.Recommendation
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("key", string(item.Key())).Msg("skipping undecodable cache row")
				continue
			}
			if err := rec.Validate(); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("key", string(item.Key())).Msg("skipping invalid cache row")
				continue
			}
			if rec.IsFresh(now, window) {
				out = append(out, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read recommendations: %w", err)
	}
	return out, nil
}

// DeleteRecommendations removes all records for the subject.
func (s *BadgerStore) DeleteRecommendations(_ context.Context, subjectID uuid.UUID) error {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := subjectPrefix(subjectID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("list recommendations: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("delete recommendation: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("delete recommendations: %w", err)
	}
	return nil
}

// InsertRecommendations appends records for the subject in one transaction.
func (s *BadgerStore) InsertRecommendations(_ context.Context, subjectID uuid.UUID, records []types.Recommendation) error {
	if err := validateBatch(subjectID, records); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for i := range records {
			rec := &records[i]
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal recommendation: %w", err)
			}
			entry := badger.NewEntry(recordKey(rec), data)
			if s.opts.retention > 0 {
				entry = entry.WithTTL(s.opts.retention)
			}
			if err := txn.SetEntry(entry); err != nil {
				return fmt.Errorf("set recommendation: %w", err)
			}
		}
		return nil
	})
}
