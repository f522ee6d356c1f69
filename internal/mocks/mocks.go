// Package mocks holds testify mocks for the domain ports
package mocks

import (
	"context"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockExchangeAPI mocks the service.ExchangeAPI interface
type MockExchangeAPI struct {
	mock.Mock
}

func (m *MockExchangeAPI) FetchToday(ctx context.Context) (*entity.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Snapshot), args.Error(1)
}

func (m *MockExchangeAPI) FetchByDate(ctx context.Context, date time.Time) (*entity.Snapshot, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Snapshot), args.Error(1)
}

// MockSnapshotRepository mocks the repository.SnapshotRepository interface
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Today(ctx context.Context) (*entity.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) FindByDate(ctx context.Context, date time.Time) (*entity.Snapshot, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Snapshot), args.Error(1)
}

// MockSnapshotStore mocks the repository.SnapshotStore interface
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Get(ctx context.Context, date time.Time) (*entity.Snapshot, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Snapshot), args.Error(1)
}

func (m *MockSnapshotStore) Put(ctx context.Context, snapshot *entity.Snapshot, ttl time.Duration) error {
	args := m.Called(ctx, snapshot, ttl)
	return args.Error(0)
}

// Snapshot builds a snapshot from code -> comma-decimal value pairs
func Snapshot(date time.Time, values map[string]string) *entity.Snapshot {
	snap := &entity.Snapshot{Date: date, Rates: make(map[entity.CurrencyCode]entity.Rate, len(values))}
	for code, v := range values {
		snap.Rates[entity.CurrencyCode(code)] = entity.Rate{Code: entity.CurrencyCode(code), Title: code, Value: v}
	}
	return snap
}
