package service

import (
	"context"
	"sync"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
)

// ChartState is the slot the chart widget polls
type ChartState struct {
	Generation  uint64               `json:"generation"`
	Granularity entity.Granularity   `json:"range"`
	Loading     bool                 `json:"loading"`
	Error       string               `json:"error,omitempty"`
	Dataset     *entity.ChartDataset `json:"dataset"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// Done reports whether the cycle identified by Generation has finished
func (s ChartState) Done() bool {
	return s.Generation > 0 && !s.Loading
}

// ChartService owns the single chart slot. Every cycle gets a generation id and only the latest
// generation may write the slot.
type ChartService struct {
	builder *SeriesBuilder
	logger  logger.Logger
	now     func() time.Time

	mu      sync.Mutex
	base    context.Context
	stop    context.CancelFunc
	state   ChartState
	cancel  context.CancelFunc
	changed chan struct{}
	wg      sync.WaitGroup
}

// NewChartService creates a chart service around a builder
func NewChartService(builder *SeriesBuilder, log logger.Logger) *ChartService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	base, stop := context.WithCancel(context.Background())

	return &ChartService{
		builder: builder,
		logger:  log.WithField("component", "chart_service"),
		now:     time.Now,
		base:    base,
		stop:    stop,
		changed: make(chan struct{}),
	}
}

// SetClock sets the clock that decides "today"; its location decides calendar boundaries
func (s *ChartService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Today returns the current calendar date according to the service clock
func (s *ChartService) Today() time.Time {
	return entity.CalendarDate(s.now())
}

// Refresh starts a new cycle in the background and returns its generation. The previous cycle,
// if still running, is cancelled and its result will be discarded. The previous dataset stays
// visible until the new cycle finishes.
func (s *ChartService) Refresh(g entity.Granularity) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel

	s.state.Generation++
	gen := s.state.Generation
	s.state.Granularity = g
	s.state.Loading = true
	s.state.Error = ""
	s.notifyLocked()

	s.logger.Info("Chart cycle started", map[string]interface{}{
		"generation": gen,
		"range":      g,
	})

	s.wg.Add(1)
	go s.run(ctx, cancel, gen, g)
	return gen
}

func (s *ChartService) run(ctx context.Context, cancel context.CancelFunc, gen uint64, g entity.Granularity) {
	defer s.wg.Done()
	defer cancel()

	dataset, err := s.builder.Build(ctx, g, s.Today())

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.state.Generation {
		s.logger.Debug("Discarding stale chart cycle", map[string]interface{}{
			"generation": gen,
			"latest":     s.state.Generation,
		})
		return
	}

	s.cancel = nil
	s.state.Loading = false
	s.state.UpdatedAt = s.now()
	if err != nil {
		s.logger.Error("Chart cycle failed", map[string]interface{}{
			"generation": gen,
			"range":      g,
			"error":      err.Error(),
		})
		s.state.Error = apperrors.ErrDataUnavailable.Error()
		s.state.Dataset = nil
	} else {
		s.state.Error = ""
		s.state.Dataset = dataset
	}
	s.notifyLocked()
}

// notifyLocked wakes every Wait call. Callers hold s.mu.
func (s *ChartService) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// State returns a copy of the chart slot
func (s *ChartService) State() ChartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until generation gen has finished or has been superseded by a newer cycle
func (s *ChartService) Wait(ctx context.Context, gen uint64) (ChartState, error) {
	for {
		s.mu.Lock()
		state, changed := s.state, s.changed
		s.mu.Unlock()

		if state.Generation > gen || (state.Generation == gen && !state.Loading) {
			return state, nil
		}

		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-changed:
		}
	}
}

// Build runs one synchronous cycle for today without touching the chart slot
func (s *ChartService) Build(ctx context.Context, g entity.Granularity) (*entity.ChartDataset, error) {
	return s.builder.Build(ctx, g, s.Today())
}

// Close cancels any running cycle and waits for it to return
func (s *ChartService) Close() {
	s.stop()
	s.wg.Wait()
}

