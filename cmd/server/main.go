package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/application/service"
	"github.com/damon-houk/fx-rate-dashboard/internal/config"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/api"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/cache"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/db"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/handler"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/scheduler"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		logger.Error("Failed to load configuration", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	log := logger.NewJSONLogger(os.Stdout, cfg.LogLevel())
	logger.SetDefaultLogger(log)

	if err := run(cfg, log); err != nil {
		log.Error("Server exited with error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	log.Info("Server exited", nil)
}

func run(cfg *config.Config, log logger.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	now := func() time.Time { return time.Now().In(loc) }

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Setup BadgerDB
	badgerDB, err := db.OpenBadger(cfg.Storage.BadgerDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := badgerDB.Close(); err != nil {
			log.Error("Error closing BadgerDB", map[string]interface{}{"error": err.Error()})
		}
	}()
	log.Info("Snapshot store opened", map[string]interface{}{
		"dir":       cfg.Storage.BadgerDir,
		"in_memory": cfg.Storage.BadgerDir == "",
	})

	// Upstream client and snapshot repository
	client := api.NewExchangeAPIClient(cfg.Upstream.BaseURL, &http.Client{Timeout: cfg.Upstream.Timeout}, log)
	client.SetCache(cache.NewSnapshotCache(cfg.Upstream.TodayCacheTTL))
	client.SetClock(now)

	snapshots := db.NewCachedSnapshotRepository(client, db.NewBadgerSnapshotStore(badgerDB), log, cfg.Upstream.TodayCacheTTL)
	snapshots.SetClock(now)

	// Initialize services
	builder := service.NewSeriesBuilder(snapshots, log)
	builder.SetDelay(cfg.Upstream.FetchDelay)

	charts := service.NewChartService(builder, log)
	charts.SetClock(now)
	defer charts.Close()

	conversions := service.NewConversionService(snapshots, log)
	tables := service.NewRateTableService(snapshots, log)
	tables.SetClock(now)

	// Initialize handlers
	chartHandler := handler.NewChartHandler(charts, cfg.Granularity(), log)
	chartHandler.SetWaitTimeout(cfg.Chart.WaitTimeout)
	rateTableHandler := handler.NewRateTableHandler(tables, loc, log)
	rateTableHandler.SetClock(now)

	router := handler.NewRouter(handler.Handlers{
		Chart:      chartHandler,
		RateTable:  rateTableHandler,
		Conversion: handler.NewConversionHandler(conversions, loc, log),
	}, cfg.CORS.AllowedOrigins, log)

	// Scheduled jobs
	jobs := scheduler.NewScheduler(ctx, charts, snapshots, cfg.Granularity(), log)
	if err := jobs.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.WarmTodayCron); err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server", map[string]interface{}{"addr": cfg.Server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		jobs.Start()
		// Build the default chart once so the first page load finds data
		charts.Refresh(cfg.Granularity())

		<-gctx.Done()
		<-jobs.Stop().Done()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server", nil)

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
