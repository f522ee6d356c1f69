// Package db implements snapshot persistence and the read-through snapshot repository
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/repository"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/service"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
)

// CachedSnapshotRepository serves snapshots from the store and falls back to the exchange API.
// Past dates are stored permanently since the API never revises them; the current date is
// stored with todayTTL. Snapshots without any rate are never stored.
type CachedSnapshotRepository struct {
	provider service.ExchangeAPI
	store    repository.SnapshotStore
	logger   logger.Logger
	now      func() time.Time
	todayTTL time.Duration
}

// NewCachedSnapshotRepository creates a read-through snapshot repository. A nil store disables
// storage.
func NewCachedSnapshotRepository(provider service.ExchangeAPI, store repository.SnapshotStore, log logger.Logger, todayTTL time.Duration) *CachedSnapshotRepository {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &CachedSnapshotRepository{
		provider: provider,
		store:    store,
		logger:   log,
		now:      time.Now,
		todayTTL: todayTTL,
	}
}

// SetClock overrides the clock used to tell past dates from the current one
func (r *CachedSnapshotRepository) SetClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Today returns the current snapshot straight from the exchange API
func (r *CachedSnapshotRepository) Today(ctx context.Context) (*entity.Snapshot, error) {
	snapshot, err := r.provider.FetchToday(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve today's snapshot: %w", err)
	}
	return snapshot, nil
}

// FindByDate returns the snapshot for date, fetching and storing it on a miss
func (r *CachedSnapshotRepository) FindByDate(ctx context.Context, date time.Time) (*entity.Snapshot, error) {
	date = entity.CalendarDate(date)
	label := entity.FormatDate(date)

	if r.store != nil {
		snapshot, err := r.store.Get(ctx, date)
		if err == nil {
			return snapshot, nil
		}
		if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
			r.logger.Warn("Snapshot store read failed", map[string]interface{}{
				"date":  label,
				"error": err.Error(),
			})
		}
	}

	snapshot, err := r.provider.FetchByDate(ctx, date)
	if err != nil {
		r.logger.Debug("Failed to retrieve snapshot", map[string]interface{}{
			"date":  label,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to retrieve snapshot for %s: %w", label, err)
	}

	r.remember(ctx, snapshot, date)
	return snapshot, nil
}

func (r *CachedSnapshotRepository) remember(ctx context.Context, snapshot *entity.Snapshot, date time.Time) {
	if r.store == nil {
		return
	}
	// an empty body is treated as a transient upstream fault and re-fetched next time
	if len(snapshot.Rates) == 0 {
		r.logger.Debug("Not storing empty snapshot", map[string]interface{}{
			"date": entity.FormatDate(date),
		})
		return
	}

	today := entity.CalendarDate(r.now().In(date.Location()))
	var ttl time.Duration
	switch {
	case date.Before(today):
		ttl = 0
	case r.todayTTL > 0:
		ttl = r.todayTTL
	default:
		return
	}

	stored := *snapshot
	stored.Date = date
	if err := r.store.Put(ctx, &stored, ttl); err != nil {
		r.logger.Warn("Failed to store snapshot", map[string]interface{}{
			"date":  entity.FormatDate(date),
			"error": err.Error(),
		})
		return
	}

	r.logger.Debug("Snapshot stored", map[string]interface{}{
		"date":  entity.FormatDate(date),
		"rates": len(snapshot.Rates),
		"ttl":   ttl.String(),
	})
}
