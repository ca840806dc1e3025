package duties

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
	"github.com/rbarrios/fleetduty-backend/pkg/types"
)

func setupDutiesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS service_schedules (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS routes (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  plate_number TEXT NOT NULL,
  label TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS drivers (
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS vehicle_block_templates (
  id TEXT PRIMARY KEY,
  schedule_id TEXT NOT NULL,
  code TEXT NOT NULL,
  color TEXT NOT NULL DEFAULT '#888888',
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT ux_block_templates_schedule_code UNIQUE (schedule_id, code)
);`,
		`CREATE TABLE IF NOT EXISTS driver_run_templates (
  id TEXT PRIMARY KEY,
  schedule_id TEXT NOT NULL,
  code TEXT NOT NULL,
  color TEXT NOT NULL DEFAULT '#888888',
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT ux_run_templates_schedule_code UNIQUE (schedule_id, code)
);`,
		`CREATE TABLE IF NOT EXISTS duty_templates (
  id TEXT PRIMARY KEY,
  schedule_id TEXT NOT NULL,
  name TEXT,
  start_time TEXT NOT NULL,
  end_time TEXT NOT NULL,
  duty_type TEXT NOT NULL,
  block_code TEXT,
  run_code TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS vehicle_blocks (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  template_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT ux_vehicle_blocks_code UNIQUE (code)
);`,
		`CREATE TABLE IF NOT EXISTS driver_runs (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  template_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT ux_driver_runs_code UNIQUE (code)
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

	tables := []string{
		"outbox_events", "trips", "trip_duties", "duties",
		"driver_runs", "vehicle_blocks", "duty_templates",
		"driver_run_templates", "vehicle_block_templates",
		"drivers", "vehicles", "routes", "service_schedules",
	}
	for _, table := range tables {
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

func seedSchedule(t *testing.T, db *gorm.DB, name string) *models.ServiceSchedule {
	t.Helper()
	schedule := &models.ServiceSchedule{ID: uuid.New(), Name: name}
	require.NoError(t, db.Create(schedule).Error)
	return schedule
}

func seedRoute(t *testing.T, db *gorm.DB, code string) *models.Route {
	t.Helper()
	route := &models.Route{ID: uuid.New(), Code: code, Name: "Route " + code}
	require.NoError(t, db.Create(route).Error)
	return route
}

func seedBlockTemplate(t *testing.T, db *gorm.DB, scheduleID uuid.UUID, code string) *models.VehicleBlockTemplate {
	t.Helper()
	template := &models.VehicleBlockTemplate{ID: uuid.New(), ScheduleID: scheduleID, Code: code, Color: "#123456"}
	require.NoError(t, db.Create(template).Error)
	return template
}

func seedRunTemplate(t *testing.T, db *gorm.DB, scheduleID uuid.UUID, code string) *models.DriverRunTemplate {
	t.Helper()
	template := &models.DriverRunTemplate{ID: uuid.New(), ScheduleID: scheduleID, Code: code, Color: "#654321"}
	require.NoError(t, db.Create(template).Error)
	return template
}

func mustTimeOfDay(t *testing.T, raw string) types.TimeOfDay {
	t.Helper()
	parsed, err := types.ParseTimeOfDay(raw)
	require.NoError(t, err)
	return parsed
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}
