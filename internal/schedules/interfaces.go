package schedules

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
	"github.com/rbarrios/fleetduty-backend/pkg/pagination"
)

// Repository defines persistence operations for schedules and their templates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSchedule(ctx context.Context, schedule *models.ServiceSchedule) (*models.ServiceSchedule, error)
	FindScheduleByID(ctx context.Context, id uuid.UUID) (*models.ServiceSchedule, error)
	ListSchedules(ctx context.Context, params pagination.Params) (*ScheduleList, error)
	DeleteSchedule(ctx context.Context, id uuid.UUID) error
	DeleteTemplatesBySchedule(ctx context.Context, scheduleID uuid.UUID) error
	CreateBlockTemplate(ctx context.Context, template *models.VehicleBlockTemplate) (*models.VehicleBlockTemplate, error)
	CreateRunTemplate(ctx context.Context, template *models.DriverRunTemplate) (*models.DriverRunTemplate, error)
	CreateDutyTemplate(ctx context.Context, template *models.DutyTemplate) (*models.DutyTemplate, error)
	ListBlockTemplates(ctx context.Context, scheduleID uuid.UUID) ([]models.VehicleBlockTemplate, error)
	ListRunTemplates(ctx context.Context, scheduleID uuid.UUID) ([]models.DriverRunTemplate, error)
	ListDutyTemplates(ctx context.Context, scheduleID uuid.UUID) ([]models.DutyTemplate, error)
}
