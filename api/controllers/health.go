package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/rbarrios/fleetduty-backend/api/responses"
	"github.com/rbarrios/fleetduty-backend/pkg/config"
	"github.com/rbarrios/fleetduty-backend/pkg/db"
	"github.com/rbarrios/fleetduty-backend/pkg/logger"
	"github.com/rbarrios/fleetduty-backend/pkg/redis"
)

const readyCheckTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FleetDuty-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FleetDuty-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		checks["db"] = checkDep(ctx, logg, "db", pingOrNil(dbP), &healthy)
		checks["redis"] = checkDep(ctx, logg, "redis", pingOrNil(redisP), &healthy)

		status := http.StatusOK
		overall := "ready"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": overall,
			"checks": checks,
		})
	}
}

func pingOrNil(p interface {
	Ping(context.Context) error
}) func(context.Context) error {
	if p == nil {
		return nil
	}
	return p.Ping
}

func checkDep(ctx context.Context, logg *logger.Logger, name string, ping func(context.Context) error, healthy *bool) string {
	if ping == nil {
		return "skipped"
	}
	if err := ping(ctx); err != nil {
		*healthy = false
		if logg != nil {
			logg.Error(logg.WithField(ctx, "dependency", name), "readiness check failed", err)
		}
		return "down"
	}
	return "ok"
}
