// Package scheduler runs the periodic chart refresh and today-snapshot warm-up jobs
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/application/service"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/repository"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
	"github.com/robfig/cron/v3"
)

// warmTimeout bounds a single warm-up fetch
const warmTimeout = 30 * time.Second

// ChartRefresher is the part of the chart service the scheduler drives
type ChartRefresher interface {
	State() service.ChartState
	Refresh(g entity.Granularity) uint64
}

// Scheduler manages the cron jobs
type Scheduler struct {
	cron         *cron.Cron
	charts       ChartRefresher
	snapshots    repository.SnapshotRepository
	defaultRange entity.Granularity
	logger       logger.Logger
	ctx          context.Context
}

// NewScheduler creates a scheduler for six-field (seconds first) specs. A job that is still
// running when its next tick fires is skipped.
func NewScheduler(ctx context.Context, charts ChartRefresher, snapshots repository.SnapshotRepository, defaultRange entity.Granularity, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	log = log.WithField("component", "scheduler")
	cronLog := cronLogger{log}

	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		charts:       charts,
		snapshots:    snapshots,
		defaultRange: defaultRange,
		logger:       log,
		ctx:          ctx,
	}
}

// RegisterAll registers the refresh and warm-up jobs. An empty spec leaves that job out.
func (s *Scheduler) RegisterAll(refreshCron, warmTodayCron string) error {
	if refreshCron != "" {
		if _, err := s.cron.AddFunc(refreshCron, s.RefreshNow); err != nil {
			return fmt.Errorf("register chart refresh: %w", err)
		}
	}
	if warmTodayCron != "" {
		if _, err := s.cron.AddFunc(warmTodayCron, s.WarmNow); err != nil {
			return fmt.Errorf("register today warm-up: %w", err)
		}
	}

	s.logger.Info("Scheduled jobs registered", map[string]interface{}{
		"refresh_cron":    refreshCron,
		"warm_today_cron": warmTodayCron,
		"jobs":            len(s.cron.Entries()),
	})
	return nil
}

// Jobs returns the number of registered jobs
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", nil)
}

// Stop stops the scheduler. The returned context is done once running jobs have returned.
func (s *Scheduler) Stop() context.Context {
	ctx := s.cron.Stop()
	s.logger.Info("Scheduler stopped", nil)
	return ctx
}

// RefreshNow re-runs the chart cycle for the range currently shown, so the labels roll over to
// the new day without a client asking for it
func (s *Scheduler) RefreshNow() {
	g := s.defaultRange
	if state := s.charts.State(); state.Generation > 0 {
		g = state.Granularity
	}

	gen := s.charts.Refresh(g)
	s.logger.Info("Scheduled chart refresh started", map[string]interface{}{
		"generation": gen,
		"range":      g,
	})
}

// WarmNow fetches the current day's snapshot so the next conversion or daily chart is served
// from cache
func (s *Scheduler) WarmNow() {
	ctx, cancel := context.WithTimeout(s.ctx, warmTimeout)
	defer cancel()

	snapshot, err := s.snapshots.Today(ctx)
	if err != nil {
		s.logger.Warn("Today snapshot warm-up failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	s.logger.Debug("Today snapshot warmed", map[string]interface{}{
		"date":  entity.FormatDate(snapshot.Date),
		"rates": len(snapshot.Rates),
	})
}

// cronLogger adapts logger.Logger to cron.Logger
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, kvFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvFields(keysAndValues)
	fields["error"] = err.Error()
	l.log.Error(msg, fields)
}

func kvFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
