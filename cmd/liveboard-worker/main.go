package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/rbarrios/fleetduty-backend/internal/duties"
	"github.com/rbarrios/fleetduty-backend/internal/liveboard"
	"github.com/rbarrios/fleetduty-backend/pkg/config"
	"github.com/rbarrios/fleetduty-backend/pkg/db"
	"github.com/rbarrios/fleetduty-backend/pkg/livefeed"
	"github.com/rbarrios/fleetduty-backend/pkg/logger"
	"github.com/rbarrios/fleetduty-backend/pkg/metrics"
	"github.com/rbarrios/fleetduty-backend/pkg/migrate"
	"github.com/rbarrios/fleetduty-backend/pkg/outbox"
)

// The worker reloads its snapshot on this cadence, picking up duties
// materialized after startup and rolling the board over at midnight.
const refreshInterval = time.Minute

func main() {
	logg := logger.New(logger.Options{ServiceName: "liveboard-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "liveboard-worker"

	logg = logger.New(logger.Options{
		ServiceName: "liveboard-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	boardMetrics := metrics.NewLiveboardMetrics(registry)

	subscriber, err := livefeed.NewSubscriber(cfg.Live, logg, boardMetrics, 0)
	if err != nil {
		logg.Error(context.Background(), "failed to connect live feed", err)
		os.Exit(1)
	}

	dutyService, err := duties.NewService(
		duties.NewRepository(dbClient.DB()),
		dbClient,
		outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create duty service", err)
		os.Exit(1)
	}

	board, err := liveboard.NewBoard(dutyService, logg, boardMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create board", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "liveboard-worker",
	})

	if err := loadToday(ctx, board); err != nil {
		logg.Error(ctx, "failed to load board snapshot", err)
		os.Exit(1)
	}

	if err := subscriber.Start(ctx); err != nil {
		logg.Error(ctx, "failed to start live feed subscription", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	metricsServer := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()

	go refreshLoop(ctx, logg, board)

	logg.Info(ctx, "liveboard worker running")
	board.Run(ctx, subscriber.Events())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	closeErr := multierr.Combine(
		subscriber.Close(),
		metricsServer.Shutdown(shutdownCtx),
	)
	if closeErr != nil {
		logg.Error(ctx, "liveboard worker shutdown errors", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "liveboard worker shutting down gracefully")
}

// loadToday snapshots the current date and subscribes every route the
// snapshot mentions, so the worker tracks the whole fleet by default.
func loadToday(ctx context.Context, board *liveboard.Board) error {
	today := time.Now().UTC().Format(duties.DateLayout)
	if err := board.Load(ctx, today, nil); err != nil {
		return err
	}
	for _, entry := range board.Entries() {
		board.Subscribe(entry.RouteID)
	}
	return nil
}

func refreshLoop(ctx context.Context, logg *logger.Logger, board *liveboard.Board) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := loadToday(ctx, board); err != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "board refresh failed")
			}
		}
	}
}
