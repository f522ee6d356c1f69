package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/damon-houk/fx-rate-dashboard/internal/mocks"
	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	bdb, err := OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { bdb.Close() })
	return bdb
}

func TestBadgerSnapshotStore(t *testing.T) {
	store := NewBadgerSnapshotStore(openTestDB(t))
	ctx := context.Background()
	date := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Missing", func(t *testing.T) {
		_, err := store.Get(ctx, date)
		assert.True(t, errors.Is(err, apperrors.ErrSnapshotNotFound))
	})

	t.Run("Round trip", func(t *testing.T) {
		snap := mocks.Snapshot(date, map[string]string{"USD": "32,50", "EUR": "35,12"})
		require.NoError(t, store.Put(ctx, snap, 0))

		got, err := store.Get(ctx, date)
		require.NoError(t, err)
		assert.True(t, date.Equal(got.Date))
		assert.Equal(t, snap.Rates, got.Rates)

		count, err := store.Count()
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("TTL entry is readable before expiry", func(t *testing.T) {
		today := date.AddDate(0, 0, 2)
		require.NoError(t, store.Put(ctx, mocks.Snapshot(today, map[string]string{"USD": "33,00"}), time.Hour))
		got, err := store.Get(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, "33,00", got.Rates["USD"].Value)
	})
}

func TestOpenBadgerOnDisk(t *testing.T) {
	dir := t.TempDir()
	bdb, err := OpenBadger(dir)
	require.NoError(t, err)
	require.NoError(t, bdb.Close())
}
