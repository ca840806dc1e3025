package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/rbarrios/fleetduty-backend/api/routes"
	"github.com/rbarrios/fleetduty-backend/internal/assignments"
	"github.com/rbarrios/fleetduty-backend/internal/duties"
	"github.com/rbarrios/fleetduty-backend/internal/schedules"
	"github.com/rbarrios/fleetduty-backend/internal/trips"
	"github.com/rbarrios/fleetduty-backend/pkg/config"
	"github.com/rbarrios/fleetduty-backend/pkg/db"
	"github.com/rbarrios/fleetduty-backend/pkg/livefeed"
	"github.com/rbarrios/fleetduty-backend/pkg/logger"
	"github.com/rbarrios/fleetduty-backend/pkg/migrate"
	"github.com/rbarrios/fleetduty-backend/pkg/outbox"
	"github.com/rbarrios/fleetduty-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	// The live feed is best-effort; the API still serves board snapshots
	// when NATS is unreachable.
	var feed trips.FeedPublisher
	feedPublisher, err := livefeed.NewPublisher(cfg.Live, logg, nil)
	if err != nil {
		logg.Warn(context.Background(), "live feed unavailable, starting without it")
	} else {
		feed = feedPublisher
		defer func() {
			if err := feedPublisher.Close(); err != nil {
				logg.Error(context.Background(), "error closing live feed", err)
			}
		}()
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	scheduleService, err := schedules.NewService(schedules.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create schedule service", err)
		os.Exit(1)
	}

	dutyService, err := duties.NewService(duties.NewRepository(dbClient.DB()), dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create duty service", err)
		os.Exit(1)
	}

	assignmentService, err := assignments.NewService(assignments.NewRepository(dbClient.DB()), dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create assignment service", err)
		os.Exit(1)
	}

	tripService, err := trips.NewService(trips.NewRepository(dbClient.DB()), dbClient, outboxService, feed, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create trip service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, scheduleService, dutyService, assignmentService, tripService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
