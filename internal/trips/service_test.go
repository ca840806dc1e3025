package trips

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
	pkgerrors "github.com/rbarrios/fleetduty-backend/pkg/errors"
	"github.com/rbarrios/fleetduty-backend/pkg/livefeed"
	"github.com/rbarrios/fleetduty-backend/pkg/outbox"
)

func setupTripsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS routes (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS duties (
  id TEXT PRIMARY KEY,
  date DATETIME NOT NULL,
  start_at DATETIME NOT NULL,
  end_at DATETIME NOT NULL,
  duty_type TEXT NOT NULL,
  driver_id TEXT,
  vehicle_id TEXT,
  block_id TEXT,
  run_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS trip_duties (
  id TEXT PRIMARY KEY,
  duty_id TEXT NOT NULL,
  route_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT ux_trip_duties_duty UNIQUE (duty_id)
);`,
		`CREATE TABLE IF NOT EXISTS trips (
  id TEXT PRIMARY KEY,
  trip_duty_id TEXT NOT NULL,
  route_id TEXT NOT NULL,
  vehicle_id TEXT,
  driver_id TEXT,
  started_at DATETIME NOT NULL,
  ended_at DATETIME,
  status TEXT NOT NULL DEFAULT 'in_progress',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_trips_active_trip_duty
  ON trips (trip_duty_id) WHERE ended_at IS NULL;`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	for _, table := range []string{"outbox_events", "trips", "trip_duties", "duties", "routes"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}
	return db
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type captureFeed struct {
	started []livefeed.TripStarted
	ended   []livefeed.TripEnded
}

func (c *captureFeed) PublishTripStarted(ctx context.Context, ev livefeed.TripStarted) error {
	c.started = append(c.started, ev)
	return nil
}

func (c *captureFeed) PublishTripEnded(ctx context.Context, ev livefeed.TripEnded) error {
	c.ended = append(c.ended, ev)
	return nil
}

func newTripService(t *testing.T, db *gorm.DB, feed FeedPublisher) Service {
	t.Helper()
	svc, err := NewService(
		NewRepository(db),
		testTxRunner{db: db},
		outbox.NewService(outbox.NewRepository(db), nil),
		feed,
		nil,
	)
	require.NoError(t, err)
	return svc
}

func seedTripDuty(t *testing.T, db *gorm.DB) (*models.Route, *models.TripDuty) {
	t.Helper()
	route := &models.Route{ID: uuid.New(), Code: "12", Name: "Route 12"}
	require.NoError(t, db.Create(route).Error)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	duty := &models.Duty{
		ID:       uuid.New(),
		Date:     date,
		StartAt:  date.Add(6 * time.Hour),
		EndAt:    date.Add(8 * time.Hour),
		DutyType: enums.DutyTypeTrip,
	}
	require.NoError(t, db.Create(duty).Error)

	tripDuty := &models.TripDuty{ID: uuid.New(), DutyID: duty.ID, RouteID: route.ID}
	require.NoError(t, db.Create(tripDuty).Error)
	return route, tripDuty
}

func TestStartTripUnknownTripDuty(t *testing.T) {
	db := setupTripsTestDB(t)
	svc := newTripService(t, db, nil)

	_, err := svc.StartTrip(context.Background(), StartTripInput{TripDutyID: uuid.New()})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestStartTripCreatesActiveTripAndPublishes(t *testing.T) {
	db := setupTripsTestDB(t)
	feed := &captureFeed{}
	svc := newTripService(t, db, feed)
	ctx := context.Background()

	route, tripDuty := seedTripDuty(t, db)

	startedAt := time.Date(2026, 3, 2, 6, 2, 0, 0, time.UTC)
	trip, err := svc.StartTrip(ctx, StartTripInput{TripDutyID: tripDuty.ID, StartedAt: startedAt})
	require.NoError(t, err)
	assert.Equal(t, enums.TripStatusInProgress, trip.Status)
	assert.Equal(t, route.ID, trip.RouteID)
	assert.Nil(t, trip.EndedAt)

	require.Len(t, feed.started, 1)
	assert.Equal(t, tripDuty.ID, feed.started[0].TripDutyID)
	assert.Equal(t, trip.ID, feed.started[0].TripID)
	assert.Equal(t, route.ID, feed.started[0].RouteID)

	var events []models.OutboxEvent
	require.NoError(t, db.Where("event_type = ?", enums.EventTripStarted).Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestStartTripRejectsSecondActiveTrip(t *testing.T) {
	db := setupTripsTestDB(t)
	svc := newTripService(t, db, nil)
	ctx := context.Background()

	_, tripDuty := seedTripDuty(t, db)

	first, err := svc.StartTrip(ctx, StartTripInput{TripDutyID: tripDuty.ID})
	require.NoError(t, err)

	_, err = svc.StartTrip(ctx, StartTripInput{TripDutyID: tripDuty.ID})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	// Once the active trip ends, a new one may start.
	_, err = svc.EndTrip(ctx, EndTripInput{TripID: first.ID})
	require.NoError(t, err)
	_, err = svc.StartTrip(ctx, StartTripInput{TripDutyID: tripDuty.ID})
	require.NoError(t, err)
}

func TestEndTripValidation(t *testing.T) {
	db := setupTripsTestDB(t)
	svc := newTripService(t, db, nil)
	ctx := context.Background()

	_, tripDuty := seedTripDuty(t, db)
	startedAt := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	trip, err := svc.StartTrip(ctx, StartTripInput{TripDutyID: tripDuty.ID, StartedAt: startedAt})
	require.NoError(t, err)

	_, err = svc.EndTrip(ctx, EndTripInput{TripID: uuid.New()})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	_, err = svc.EndTrip(ctx, EndTripInput{TripID: trip.ID, EndedAt: startedAt.Add(-time.Minute)})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.EndTrip(ctx, EndTripInput{TripID: trip.ID, Status: enums.TripStatusInProgress})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestEndTripCompletesAndPublishes(t *testing.T) {
	db := setupTripsTestDB(t)
	feed := &captureFeed{}
	svc := newTripService(t, db, feed)
	ctx := context.Background()

	route, tripDuty := seedTripDuty(t, db)
	startedAt := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	trip, err := svc.StartTrip(ctx, StartTripInput{TripDutyID: tripDuty.ID, StartedAt: startedAt})
	require.NoError(t, err)

	endedAt := startedAt.Add(2 * time.Hour)
	ended, err := svc.EndTrip(ctx, EndTripInput{TripID: trip.ID, EndedAt: endedAt})
	require.NoError(t, err)
	assert.Equal(t, enums.TripStatusCompleted, ended.Status)
	require.NotNil(t, ended.EndedAt)
	assert.True(t, ended.EndedAt.Equal(endedAt))

	require.Len(t, feed.ended, 1)
	assert.Equal(t, trip.ID, feed.ended[0].TripID)
	assert.Equal(t, route.ID, feed.ended[0].RouteID)
	assert.Equal(t, enums.TripStatusCompleted, feed.ended[0].Status)

	_, err = svc.EndTrip(ctx, EndTripInput{TripID: trip.ID})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	var events []models.OutboxEvent
	require.NoError(t, db.Where("event_type = ?", enums.EventTripEnded).Find(&events).Error)
	assert.Len(t, events, 1)
}
