// Package repository defines the data access ports used by the application services
package repository

import (
	"context"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
)

// SnapshotRepository defines the interface for snapshot access
type SnapshotRepository interface {
	// Today returns the current snapshot
	Today(ctx context.Context) (*entity.Snapshot, error)

	// FindByDate returns the snapshot published for date
	FindByDate(ctx context.Context, date time.Time) (*entity.Snapshot, error)
}

// SnapshotStore persists snapshots that have already been fetched
type SnapshotStore interface {
	// Get returns apperrors.ErrSnapshotNotFound when nothing is stored for date
	Get(ctx context.Context, date time.Time) (*entity.Snapshot, error)

	// Put stores a snapshot. A positive ttl makes the entry expire.
	Put(ctx context.Context, snapshot *entity.Snapshot, ttl time.Duration) error
}
