package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/repository"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/middleware"
)

// RateTableService serves the single-date rate table
type RateTableService struct {
	snapshots repository.SnapshotRepository
	logger    logger.Logger
	now       func() time.Time
}

// NewRateTableService creates a rate table service
func NewRateTableService(snapshots repository.SnapshotRepository, log logger.Logger) *RateTableService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &RateTableService{snapshots: snapshots, logger: log, now: time.Now}
}

// SetClock sets the clock used when no date is requested
func (s *RateTableService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Lookup returns every rate published for date (today when zero). Charted currencies come
// first in their fixed order, then any other code alphabetically.
func (s *RateTableService) Lookup(ctx context.Context, date time.Time) ([]entity.RateTableRow, error) {
	if date.IsZero() {
		date = s.now()
	}
	date = entity.CalendarDate(date)

	snapshot, err := s.snapshots.FindByDate(ctx, date)
	if err != nil {
		s.logger.Error("Failed to get snapshot for rate table", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"date":       entity.FormatDate(date),
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDataUnavailable, err)
	}

	rows := make([]entity.RateTableRow, 0, len(snapshot.Rates))
	for code, rate := range snapshot.Rates {
		rows = append(rows, entity.RateTableRow{Code: code, Title: rate.Title, Value: rate.Value})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].Code.Index(), rows[j].Code.Index()
		switch {
		case a >= 0 && b >= 0:
			return a < b
		case a >= 0:
			return true
		case b >= 0:
			return false
		default:
			return rows[i].Code < rows[j].Code
		}
	})

	return rows, nil
}
