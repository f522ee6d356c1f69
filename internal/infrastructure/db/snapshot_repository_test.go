package db

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/api"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
	"github.com/damon-houk/fx-rate-dashboard/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCachedSnapshotRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 7, 3, 12, 0, 0, 0, time.UTC)
	today := time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)
	past := today.AddDate(0, 0, -2)
	log := logger.NewJSONLogger(nil, logger.ErrorLevel)

	newRepo := func(provider *mocks.MockExchangeAPI) (*CachedSnapshotRepository, *BadgerSnapshotStore) {
		store := NewBadgerSnapshotStore(openTestDB(t))
		repo := NewCachedSnapshotRepository(provider, store, log, time.Minute)
		repo.SetClock(func() time.Time { return now })
		return repo, store
	}

	t.Run("Past dates are fetched once and stored", func(t *testing.T) {
		provider := new(mocks.MockExchangeAPI)
		repo, store := newRepo(provider)
		snap := mocks.Snapshot(past, map[string]string{"USD": "32,00"})
		provider.On("FetchByDate", ctx, past).Return(snap, nil).Once()

		first, err := repo.FindByDate(ctx, past)
		require.NoError(t, err)
		second, err := repo.FindByDate(ctx, past.Add(5*time.Hour))
		require.NoError(t, err)

		assert.Equal(t, "32,00", first.Rates["USD"].Value)
		assert.Equal(t, first.Rates, second.Rates)
		count, err := store.Count()
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		provider.AssertExpectations(t)
	})

	t.Run("Provider failure is wrapped", func(t *testing.T) {
		provider := new(mocks.MockExchangeAPI)
		repo, store := newRepo(provider)
		provider.On("FetchByDate", ctx, past).Return(nil, errors.New("connection refused")).Once()

		snap, err := repo.FindByDate(ctx, past)
		assert.Nil(t, snap)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "01-07-2024")
		_, err = store.Get(ctx, past)
		assert.True(t, errors.Is(err, apperrors.ErrSnapshotNotFound))
	})

	t.Run("Current date is stored with a TTL", func(t *testing.T) {
		provider := new(mocks.MockExchangeAPI)
		store := new(mocks.MockSnapshotStore)
		repo := NewCachedSnapshotRepository(provider, store, log, time.Minute)
		repo.SetClock(func() time.Time { return now })

		snap := mocks.Snapshot(today, map[string]string{"USD": "32,50"})
		store.On("Get", ctx, today).Return(nil, apperrors.ErrSnapshotNotFound).Once()
		provider.On("FetchByDate", ctx, today).Return(snap, nil).Once()
		store.On("Put", ctx, mock.AnythingOfType("*entity.Snapshot"), time.Minute).Return(nil).Once()

		_, err := repo.FindByDate(ctx, today)
		require.NoError(t, err)
		store.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("Today passes through", func(t *testing.T) {
		provider := new(mocks.MockExchangeAPI)
		repo := NewCachedSnapshotRepository(provider, nil, log, 0)
		provider.On("FetchToday", ctx).Return(&entity.Snapshot{Date: today}, nil).Once()

		snap, err := repo.Today(ctx)
		require.NoError(t, err)
		assert.Equal(t, today, snap.Date)
		provider.AssertExpectations(t)
	})

	t.Run("Empty past snapshots are fetched again", func(t *testing.T) {
		var calls int32
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if atomic.AddInt32(&calls, 1) == 1 {
				w.Write([]byte(`{"data":null}`))
				return
			}
			w.Write([]byte(`{"data":{"USD":{"code":"USD","title":"ABD DOLARI","value":"32,00"}}}`))
		}))
		defer upstream.Close()

		client := api.NewExchangeAPIClient(upstream.URL, nil, log)
		store := NewBadgerSnapshotStore(openTestDB(t))
		repo := NewCachedSnapshotRepository(client, store, log, time.Minute)
		repo.SetClock(func() time.Time { return now })

		first, err := repo.FindByDate(ctx, past)
		require.NoError(t, err)
		assert.Empty(t, first.Rates)
		_, err = store.Get(ctx, past)
		assert.True(t, errors.Is(err, apperrors.ErrSnapshotNotFound))

		second, err := repo.FindByDate(ctx, past)
		require.NoError(t, err)
		assert.Equal(t, "32,00", second.Rates["USD"].Value)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

		third, err := repo.FindByDate(ctx, past)
		require.NoError(t, err)
		assert.Equal(t, second.Rates, third.Rates)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})
}
