package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rbarrios/fleetduty-backend/api/controllers"
	"github.com/rbarrios/fleetduty-backend/api/middleware"
	"github.com/rbarrios/fleetduty-backend/internal/assignments"
	"github.com/rbarrios/fleetduty-backend/internal/duties"
	"github.com/rbarrios/fleetduty-backend/internal/schedules"
	"github.com/rbarrios/fleetduty-backend/internal/trips"
	"github.com/rbarrios/fleetduty-backend/pkg/config"
	"github.com/rbarrios/fleetduty-backend/pkg/db"
	"github.com/rbarrios/fleetduty-backend/pkg/logger"
	"github.com/rbarrios/fleetduty-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	scheduleService schedules.Service,
	dutyService duties.Service,
	assignmentService assignments.Service,
	tripService trips.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisPinger redis.Pinger
	var boardCache controllers.BoardCache
	if redisClient != nil {
		redisPinger = redisClient
		boardCache = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", controllers.ScheduleCreate(scheduleService, logg))
			r.Get("/", controllers.ScheduleList(scheduleService, logg))
			r.Route("/{scheduleId}", func(r chi.Router) {
				r.Get("/", controllers.ScheduleDetail(scheduleService, logg))
				r.Delete("/", controllers.ScheduleDelete(scheduleService, logg))
				r.Post("/block-templates", controllers.ScheduleCreateBlockTemplate(scheduleService, logg))
				r.Post("/run-templates", controllers.ScheduleCreateRunTemplate(scheduleService, logg))
				r.Post("/duty-templates", controllers.ScheduleCreateDutyTemplate(scheduleService, logg))
				r.Get("/duty-templates", controllers.ScheduleListDutyTemplates(scheduleService, logg))
			})
		})

		r.Route("/duties", func(r chi.Router) {
			r.Post("/materialize", controllers.DutiesMaterialize(dutyService, logg))
			r.Post("/materialize-schedule", controllers.DutiesMaterializeFromSchedule(dutyService, logg))
		})

		r.Post("/assignments/bulk", controllers.AssignmentsBulk(assignmentService, logg))

		r.Get("/board", controllers.Board(dutyService, boardCache, cfg.Timeline.StartHour, logg))

		r.Post("/trip-duties/{tripDutyId}/trips", controllers.TripStart(tripService, logg))
		r.Post("/trips/{tripId}/end", controllers.TripEnd(tripService, logg))
	})

	return r
}
