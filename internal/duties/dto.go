package duties

import (
	"time"

	"github.com/google/uuid"

	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
)

// TripSpec is one requested trip window, given as time-of-day strings.
type TripSpec struct {
	StartTime        string
	EndTime          string
	VehicleBlockCode *string
	DriverRunCode    *string
}

// MaterializeInput drives MaterializeTripDuties. Date is a calendar day in
// "2006-01-02" form.
type MaterializeInput struct {
	ScheduleID uuid.UUID
	RouteID    uuid.UUID
	Date       string
	Trips      []TripSpec
}

// MaterializeScheduleInput expands the schedule's stored duty templates.
type MaterializeScheduleInput struct {
	ScheduleID uuid.UUID
	RouteID    uuid.UUID
	Date       string
}

// MaterializeResult carries everything the batch committed.
type MaterializeResult struct {
	Duties     []models.Duty    `json:"duties"`
	TripDuties []models.TripDuty `json:"trip_duties"`
}

// DutiesMaterializedEvent is the outbox payload for a committed batch.
type DutiesMaterializedEvent struct {
	ScheduleID  uuid.UUID   `json:"schedule_id"`
	RouteID     uuid.UUID   `json:"route_id"`
	Date        string      `json:"date"`
	DutyIDs     []uuid.UUID `json:"duty_ids"`
	TripDutyIDs []uuid.UUID `json:"trip_duty_ids"`
}

// PersonRef is a resolved driver reference for board rows.
type PersonRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// VehicleRef is a resolved vehicle reference for board rows.
type VehicleRef struct {
	ID          uuid.UUID `json:"id"`
	PlateNumber string    `json:"plate_number"`
}

// TripView is the actual-execution sub-object attached to a board entry.
type TripView struct {
	ID        uuid.UUID        `json:"id"`
	StartedAt time.Time        `json:"started_at"`
	EndedAt   *time.Time       `json:"ended_at,omitempty"`
	Status    enums.TripStatus `json:"status"`
}

// TripDutyView is one board entry: the scheduled trip duty joined with its
// assignment and its most recent actual trip.
type TripDutyView struct {
	TripDutyID uuid.UUID      `json:"trip_duty_id"`
	DutyID     uuid.UUID      `json:"duty_id"`
	RouteID    uuid.UUID      `json:"route_id"`
	Date       time.Time      `json:"date"`
	StartAt    time.Time      `json:"start_at"`
	EndAt      time.Time      `json:"end_at"`
	DutyType   enums.DutyType `json:"duty_type"`
	Driver     *PersonRef     `json:"driver,omitempty"`
	Vehicle    *VehicleRef    `json:"vehicle,omitempty"`
	BlockCode  *string        `json:"block_code,omitempty"`
	RunCode    *string        `json:"run_code,omitempty"`
	Trip       *TripView      `json:"trip,omitempty"`
}
