package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/dgraph-io/badger/v3"
)

const snapshotKeyPrefix = "snapshot:"

// BadgerSnapshotStore keeps fetched snapshots in BadgerDB, one key per calendar date
type BadgerSnapshotStore struct {
	db *badger.DB
}

// NewBadgerSnapshotStore creates a snapshot store on an open database
func NewBadgerSnapshotStore(db *badger.DB) *BadgerSnapshotStore {
	return &BadgerSnapshotStore{db: db}
}

func snapshotKey(date time.Time) []byte {
	return []byte(snapshotKeyPrefix + date.Format("2006-01-02"))
}

// Put stores a snapshot under its date. A positive ttl makes badger expire the entry.
func (s *BadgerSnapshotStore) Put(ctx context.Context, snapshot *entity.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(snapshotKey(snapshot.Date), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Get returns the snapshot stored for date
func (s *BadgerSnapshotStore) Get(ctx context.Context, date time.Time) (*entity.Snapshot, error) {
	var snapshot entity.Snapshot

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(date))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snapshot)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSnapshotNotFound, entity.FormatDate(date))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve snapshot: %w", err)
	}
	return &snapshot, nil
}

// Count returns the number of stored snapshots
func (s *BadgerSnapshotStore) Count() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(snapshotKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
