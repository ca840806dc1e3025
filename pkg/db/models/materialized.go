package models

import (
	"time"

	"github.com/google/uuid"
)

// VehicleBlock is the date-scoped instance of a block template. Code is
// "{templateCode}-{date}" and globally unique: repeated materialization for
// the same date finds the existing row, and the unique index is the safety
// net when two concurrent calls both miss the find step.
type VehicleBlock struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code       string                `gorm:"column:code;not null;uniqueIndex:ux_vehicle_blocks_code"`
	TemplateID uuid.UUID             `gorm:"column:template_id;type:uuid;not null"`
	Template   *VehicleBlockTemplate `gorm:"foreignKey:TemplateID"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// DriverRun is the date-scoped instance of a run template.
type DriverRun struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code       string             `gorm:"column:code;not null;uniqueIndex:ux_driver_runs_code"`
	TemplateID uuid.UUID          `gorm:"column:template_id;type:uuid;not null"`
	Template   *DriverRunTemplate `gorm:"foreignKey:TemplateID"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
