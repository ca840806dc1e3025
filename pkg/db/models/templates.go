package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rbarrios/fleetduty-backend/pkg/enums"
	"github.com/rbarrios/fleetduty-backend/pkg/types"
)

// VehicleBlockTemplate is a recurring vehicle work pattern, not a specific
// day's instance. Code is unique within its schedule.
type VehicleBlockTemplate struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ScheduleID uuid.UUID `gorm:"column:schedule_id;type:uuid;not null;uniqueIndex:ux_block_templates_schedule_code"`
	Code       string    `gorm:"column:code;not null;uniqueIndex:ux_block_templates_schedule_code"`
	Color      string    `gorm:"column:color;not null;default:'#888888'"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// DriverRunTemplate is a recurring driver work pattern.
type DriverRunTemplate struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ScheduleID uuid.UUID `gorm:"column:schedule_id;type:uuid;not null;uniqueIndex:ux_run_templates_schedule_code"`
	Code       string    `gorm:"column:code;not null;uniqueIndex:ux_run_templates_schedule_code"`
	Color      string    `gorm:"column:color;not null;default:'#888888'"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// DutyTemplate is a time-of-day duty window owned by a schedule. StartTime
// must be strictly before EndTime.
type DutyTemplate struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ScheduleID uuid.UUID       `gorm:"column:schedule_id;type:uuid;not null"`
	Name       *string         `gorm:"column:name"`
	StartTime  types.TimeOfDay `gorm:"column:start_time;type:text;not null"`
	EndTime    types.TimeOfDay `gorm:"column:end_time;type:text;not null"`
	DutyType   enums.DutyType  `gorm:"column:duty_type;type:text;not null"`
	BlockCode  *string         `gorm:"column:block_code"`
	RunCode    *string         `gorm:"column:run_code"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
