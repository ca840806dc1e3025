package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceSchedule is a named template set. Deleting it cascades to its
// templates only; materialized duties are independent date-scoped rows.
type ServiceSchedule struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string                 `gorm:"column:name;not null"`
	BlockTemplates []VehicleBlockTemplate `gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE"`
	RunTemplates   []DriverRunTemplate    `gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE"`
	DutyTemplates  []DutyTemplate         `gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
