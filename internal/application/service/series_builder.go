// Package service holds the application services behind the dashboard endpoints
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/repository"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
)

// DefaultFetchDelay paces consecutive snapshot requests within one cycle
const DefaultFetchDelay = 50 * time.Millisecond

// SeriesBuilder turns a granularity into a gap-free chart dataset by fetching one snapshot per
// date, strictly in sequence
type SeriesBuilder struct {
	snapshots repository.SnapshotRepository
	logger    logger.Logger
	delay     time.Duration
}

// NewSeriesBuilder creates a series builder
func NewSeriesBuilder(snapshots repository.SnapshotRepository, log logger.Logger) *SeriesBuilder {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &SeriesBuilder{
		snapshots: snapshots,
		logger:    log.WithField("component", "series_builder"),
		delay:     DefaultFetchDelay,
	}
}

// SetDelay sets the pause between two snapshot fetches. Zero disables it.
func (b *SeriesBuilder) SetDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	b.delay = d
}

// GenerateDates returns the calendar dates covered by g, oldest first and ending at today
func GenerateDates(g entity.Granularity, today time.Time) []time.Time {
	today = entity.CalendarDate(today)
	count := g.Points()

	dates := make([]time.Time, 0, count)
	for i := count - 1; i >= 0; i-- {
		dates = append(dates, today.AddDate(0, 0, -i))
	}
	return dates
}

// Build runs one full cycle. Per-date fetch failures only blank that date; the returned error is
// always apperrors.ErrDataUnavailable and means no dataset was produced.
func (b *SeriesBuilder) Build(ctx context.Context, g entity.Granularity, today time.Time) (dataset *entity.ChartDataset, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Chart cycle aborted", map[string]interface{}{
				"range": g,
				"panic": fmt.Sprint(r),
			})
			dataset = nil
			err = fmt.Errorf("%w: cycle aborted: %v", apperrors.ErrDataUnavailable, r)
		}
	}()

	start := time.Now()
	dates := GenerateDates(g, today)
	labels := make([]string, 0, len(dates))
	series := make([]entity.Series, len(entity.Currencies))
	for i := range series {
		series[i] = make(entity.Series, 0, len(dates))
	}

	failed := 0
	for i, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrDataUnavailable, err)
		}

		point, ok := b.fetchPoint(ctx, g, date)
		if !ok {
			failed++
		}

		labels = append(labels, entity.FormatDate(date))
		for j, code := range entity.Currencies {
			series[j] = series[j].Append(point.Values[code])
		}

		if i < len(dates)-1 {
			if err := b.pause(ctx); err != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrDataUnavailable, err)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDataUnavailable, err)
	}

	dataset = &entity.ChartDataset{
		Granularity: g,
		Labels:      labels,
		Datasets:    make([]entity.Dataset, len(entity.Currencies)),
	}
	for j, code := range entity.Currencies {
		dataset.Datasets[j] = entity.Dataset{
			Color:   entity.ColorAt(j),
			Label:   code,
			Data:    series[j],
			Tension: 0.3,
		}
	}

	b.logger.Info("Chart cycle completed", map[string]interface{}{
		"range":       g,
		"points":      len(dates),
		"failed":      failed,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return dataset, nil
}

// fetchPoint never fails the cycle: any error yields a point with every currency unknown
func (b *SeriesBuilder) fetchPoint(ctx context.Context, g entity.Granularity, date time.Time) (entity.RatePoint, bool) {
	var (
		snapshot *entity.Snapshot
		err      error
	)
	if g.UsesTodayEndpoint() {
		snapshot, err = b.snapshots.Today(ctx)
	} else {
		snapshot, err = b.snapshots.FindByDate(ctx, date)
	}
	if err != nil {
		b.logger.Warn("Snapshot unavailable, carrying values forward", map[string]interface{}{
			"date":  entity.FormatDate(date),
			"error": err.Error(),
		})
		return entity.UnknownPoint(date), false
	}

	point, err := snapshot.Point(date)
	if err != nil {
		b.logger.Warn("Snapshot unparsable, carrying values forward", map[string]interface{}{
			"date":  entity.FormatDate(date),
			"error": err.Error(),
		})
		return point, false
	}
	return point, true
}

func (b *SeriesBuilder) pause(ctx context.Context) error {
	if b.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(b.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
