package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rbarrios/fleetduty-backend/pkg/enums"
)

// Duty is the atomic unit of work assignment for one calendar date. Driver
// and vehicle stay null until the assignment reconciler fills them in;
// materialization re-runs never touch them.
type Duty struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Date      time.Time      `gorm:"column:date;type:date;not null"`
	StartAt   time.Time      `gorm:"column:start_at;not null"`
	EndAt     time.Time      `gorm:"column:end_at;not null"`
	DutyType  enums.DutyType `gorm:"column:duty_type;type:text;not null"`
	DriverID  *uuid.UUID     `gorm:"column:driver_id;type:uuid"`
	VehicleID *uuid.UUID     `gorm:"column:vehicle_id;type:uuid"`
	BlockID   *uuid.UUID     `gorm:"column:block_id;type:uuid"`
	RunID     *uuid.UUID     `gorm:"column:run_id;type:uuid"`
	Driver    *Driver        `gorm:"foreignKey:DriverID"`
	Vehicle   *Vehicle       `gorm:"foreignKey:VehicleID"`
	Block     *VehicleBlock  `gorm:"foreignKey:BlockID"`
	Run       *DriverRun     `gorm:"foreignKey:RunID"`
	TripDuty  *TripDuty      `gorm:"foreignKey:DutyID"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TripDuty links a trip-type Duty to the route it is scheduled on. Exactly
// one per trip duty.
type TripDuty struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DutyID    uuid.UUID `gorm:"column:duty_id;type:uuid;not null;uniqueIndex:ux_trip_duties_duty"`
	RouteID   uuid.UUID `gorm:"column:route_id;type:uuid;not null"`
	Duty      *Duty     `gorm:"foreignKey:DutyID"`
	Route     *Route    `gorm:"foreignKey:RouteID"`
	Trips     []Trip    `gorm:"foreignKey:TripDutyID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Trip is the actual execution record for a TripDuty. Storage allows many
// historical rows per trip duty, but at most one may be active (ended_at IS
// NULL), enforced by a partial unique index.
type Trip struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TripDutyID uuid.UUID        `gorm:"column:trip_duty_id;type:uuid;not null"`
	RouteID    uuid.UUID        `gorm:"column:route_id;type:uuid;not null"`
	VehicleID  *uuid.UUID       `gorm:"column:vehicle_id;type:uuid"`
	DriverID   *uuid.UUID       `gorm:"column:driver_id;type:uuid"`
	StartedAt  time.Time        `gorm:"column:started_at;not null"`
	EndedAt    *time.Time       `gorm:"column:ended_at"`
	Status     enums.TripStatus `gorm:"column:status;type:text;not null;default:'in_progress'"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
