package internal

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/application/service"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/db"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticExchangeAPI serves the same rates for every date
type staticExchangeAPI struct{}

func (staticExchangeAPI) FetchToday(ctx context.Context) (*entity.Snapshot, error) {
	return staticExchangeAPI{}.FetchByDate(ctx, time.Now())
}

func (staticExchangeAPI) FetchByDate(_ context.Context, date time.Time) (*entity.Snapshot, error) {
	snapshot := &entity.Snapshot{Date: entity.CalendarDate(date), Rates: make(map[entity.CurrencyCode]entity.Rate)}
	for i, code := range entity.Currencies {
		snapshot.Rates[code] = entity.Rate{Code: code, Title: string(code), Value: fmt.Sprintf("%d,%02d", 10+i, date.Day())}
	}
	return snapshot, nil
}

func TestPerformance(t *testing.T) {
	// Skip in short mode or CI
	if testing.Short() {
		t.Skip("Skipping performance test in short mode")
	}

	badgerDB, err := db.OpenBadger("")
	require.NoError(t, err)
	defer badgerDB.Close()

	log := logger.NewJSONLogger(io.Discard, logger.ErrorLevel)
	store := db.NewBadgerSnapshotStore(badgerDB)
	snapshots := db.NewCachedSnapshotRepository(staticExchangeAPI{}, store, log, time.Minute)

	builder := service.NewSeriesBuilder(snapshots, log)
	builder.SetDelay(0)
	charts := service.NewChartService(builder, log)
	defer charts.Close()
	conversions := service.NewConversionService(snapshots, log)

	concurrency := 10
	perWorker := 20

	t.Run("Snapshot Store", func(t *testing.T) {
		startTime := time.Now()
		today := entity.CalendarDate(time.Now())

		var wg sync.WaitGroup
		wg.Add(concurrency)
		for i := 0; i < concurrency; i++ {
			go func(workerID int) {
				defer wg.Done()

				ctx := context.Background()
				for j := 0; j < perWorker; j++ {
					date := today.AddDate(0, 0, -(workerID*perWorker + j + 1))
					if _, err := snapshots.FindByDate(ctx, date); err != nil {
						t.Errorf("Error finding snapshot: %v", err)
					}
				}
			}(i)
		}
		wg.Wait()

		count, err := store.Count()
		require.NoError(t, err)
		assert.Equal(t, concurrency*perWorker, count)

		duration := time.Since(startTime)
		t.Logf("Snapshot store: %d lookups in %v (%.2f/sec)",
			concurrency*perWorker, duration, float64(concurrency*perWorker)/duration.Seconds())
	})

	t.Run("Chart Refresh Storm", func(t *testing.T) {
		granularities := []entity.Granularity{entity.Daily, entity.Weekly, entity.Monthly}

		var wg sync.WaitGroup
		wg.Add(concurrency)
		for i := 0; i < concurrency; i++ {
			go func() {
				defer wg.Done()
				for j := 0; j < perWorker; j++ {
					charts.Refresh(granularities[rand.Intn(len(granularities))])
				}
			}()
		}
		wg.Wait()

		latest := charts.State().Generation
		assert.Equal(t, uint64(concurrency*perWorker), latest)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		state, err := charts.Wait(ctx, latest)
		require.NoError(t, err)

		// only the last cycle may have written the slot
		assert.Equal(t, latest, state.Generation)
		assert.False(t, state.Loading)
		assert.Empty(t, state.Error)
		require.NotNil(t, state.Dataset)
		assert.Equal(t, state.Granularity, state.Dataset.Granularity)
		assert.Len(t, state.Dataset.Labels, state.Granularity.Points())
	})

	t.Run("Currency Conversion", func(t *testing.T) {
		startTime := time.Now()

		var wg sync.WaitGroup
		wg.Add(concurrency)
		for i := 0; i < concurrency; i++ {
			go func(workerID int) {
				defer wg.Done()

				ctx := context.Background()
				for j := 0; j < perWorker; j++ {
					from := entity.Currencies[(workerID+j)%len(entity.Currencies)]
					_, err := conversions.Convert(ctx, entity.ConversionRequest{
						Amount: decimal.NewFromInt(int64(100 + j)),
						From:   from,
						To:     entity.BaseCurrency,
					})
					if err != nil {
						t.Errorf("Error converting %s: %v", from, err)
					}
				}
			}(i)
		}
		wg.Wait()

		duration := time.Since(startTime)
		t.Logf("Currency conversion: %d conversions in %v (%.2f/sec)",
			concurrency*perWorker, duration, float64(concurrency*perWorker)/duration.Seconds())
	})
}
