package service

import (
	"context"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
)

// ExchangeAPI defines the interface for fetching snapshots from the remote exchange API
type ExchangeAPI interface {
	// FetchToday retrieves the current snapshot
	FetchToday(ctx context.Context) (*entity.Snapshot, error)

	// FetchByDate retrieves the historical snapshot published for an exact date
	FetchByDate(ctx context.Context, date time.Time) (*entity.Snapshot, error)
}
