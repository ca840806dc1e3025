package trips

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db"
	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
	pkgerrors "github.com/rbarrios/fleetduty-backend/pkg/errors"
	"github.com/rbarrios/fleetduty-backend/pkg/livefeed"
	"github.com/rbarrios/fleetduty-backend/pkg/logger"
	"github.com/rbarrios/fleetduty-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// FeedPublisher pushes live events to route subscribers. It is best-effort:
// consumers recover missed events by re-fetching a snapshot.
type FeedPublisher interface {
	PublishTripStarted(ctx context.Context, ev livefeed.TripStarted) error
	PublishTripEnded(ctx context.Context, ev livefeed.TripEnded) error
}

// StartTripInput records a trip execution against a scheduled trip duty.
type StartTripInput struct {
	TripDutyID uuid.UUID
	DriverID   *uuid.UUID
	VehicleID  *uuid.UUID
	StartedAt  time.Time
}

// EndTripInput closes a running trip.
type EndTripInput struct {
	TripID  uuid.UUID
	EndedAt time.Time
	Status  enums.TripStatus
}

// TripStartedEvent is the outbox payload for a recorded start.
type TripStartedEvent struct {
	TripID     uuid.UUID `json:"trip_id"`
	TripDutyID uuid.UUID `json:"trip_duty_id"`
	RouteID    uuid.UUID `json:"route_id"`
	StartedAt  time.Time `json:"started_at"`
}

// TripEndedEvent is the outbox payload for a recorded end.
type TripEndedEvent struct {
	TripID  uuid.UUID        `json:"trip_id"`
	RouteID uuid.UUID        `json:"route_id"`
	EndedAt time.Time        `json:"ended_at"`
	Status  enums.TripStatus `json:"status"`
}

// Service defines the trip lifecycle operations.
type Service interface {
	StartTrip(ctx context.Context, input StartTripInput) (*models.Trip, error)
	EndTrip(ctx context.Context, input EndTripInput) (*models.Trip, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	feed   FeedPublisher
	logg   *logger.Logger
}

// NewService builds the trip lifecycle service. The feed publisher is
// optional; without it only outbox events are emitted.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, feed FeedPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("trips repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox, feed: feed, logg: logg}, nil
}

// StartTrip creates the execution record. A trip duty can have many
// historical trips but only one without an end; the partial unique index is
// the concurrency safety net behind the explicit check.
func (s *service) StartTrip(ctx context.Context, input StartTripInput) (*models.Trip, error) {
	if input.TripDutyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip duty id required")
	}
	startedAt := input.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	tripDuty, err := s.repo.FindTripDutyByID(ctx, input.TripDutyID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "trip duty not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip duty")
	}

	var created *models.Trip
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindActiveTripByTripDuty(ctx, tripDuty.ID); err == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "trip duty already has an active trip")
		} else if err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active trip")
		}

		trip, err := repo.CreateTrip(ctx, &models.Trip{
			TripDutyID: tripDuty.ID,
			RouteID:    tripDuty.RouteID,
			DriverID:   input.DriverID,
			VehicleID:  input.VehicleID,
			StartedAt:  startedAt,
			Status:     enums.TripStatusInProgress,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "ux_trips_active_trip_duty") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "trip duty already has an active trip")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create trip")
		}
		created = trip

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTripStarted,
			AggregateType: enums.AggregateTrip,
			AggregateID:   trip.ID,
			Version:       1,
			Data: TripStartedEvent{
				TripID:     trip.ID,
				TripDutyID: tripDuty.ID,
				RouteID:    tripDuty.RouteID,
				StartedAt:  startedAt,
			},
		})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start trip")
	}

	s.publishStarted(ctx, created)
	return created, nil
}

// EndTrip closes the trip. endedAt must not precede startedAt.
func (s *service) EndTrip(ctx context.Context, input EndTripInput) (*models.Trip, error) {
	if input.TripID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trip id required")
	}
	endedAt := input.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now().UTC()
	}
	status := input.Status
	if status == "" {
		status = enums.TripStatusCompleted
	}
	if !status.IsValid() || status == enums.TripStatusInProgress {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid end status")
	}

	var ended *models.Trip
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		trip, err := repo.FindTripByID(ctx, input.TripID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "trip not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip")
		}
		if trip.EndedAt != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "trip already ended")
		}
		if endedAt.Before(trip.StartedAt) {
			return pkgerrors.New(pkgerrors.CodeValidation, "end time precedes start time")
		}

		if err := repo.UpdateTrip(ctx, trip.ID, map[string]any{
			"ended_at": endedAt,
			"status":   status,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update trip")
		}
		trip.EndedAt = &endedAt
		trip.Status = status
		ended = trip

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTripEnded,
			AggregateType: enums.AggregateTrip,
			AggregateID:   trip.ID,
			Version:       1,
			Data: TripEndedEvent{
				TripID:  trip.ID,
				RouteID: trip.RouteID,
				EndedAt: endedAt,
				Status:  status,
			},
		})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "end trip")
	}

	s.publishEnded(ctx, ended)
	return ended, nil
}

func (s *service) publishStarted(ctx context.Context, trip *models.Trip) {
	if s.feed == nil || trip == nil {
		return
	}
	err := s.feed.PublishTripStarted(ctx, livefeed.TripStarted{
		TripDutyID: trip.TripDutyID,
		TripID:     trip.ID,
		RouteID:    trip.RouteID,
		StartedAt:  trip.StartedAt,
		Status:     trip.Status,
	})
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "trip_id", trip.ID.String()), "trip start feed publish failed")
	}
}

func (s *service) publishEnded(ctx context.Context, trip *models.Trip) {
	if s.feed == nil || trip == nil || trip.EndedAt == nil {
		return
	}
	err := s.feed.PublishTripEnded(ctx, livefeed.TripEnded{
		TripID:  trip.ID,
		RouteID: trip.RouteID,
		EndedAt: *trip.EndedAt,
		Status:  trip.Status,
	})
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "trip_id", trip.ID.String()), "trip end feed publish failed")
	}
}
