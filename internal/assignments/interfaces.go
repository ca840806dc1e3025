package assignments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
)

// Repository defines persistence operations for duty assignment.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindDutiesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Duty, error)
	FindDriverByID(ctx context.Context, id uuid.UUID) (*models.Driver, error)
	FindVehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	UpdateDutyAssignment(ctx context.Context, dutyID uuid.UUID, updates map[string]any) error
	FindDutiesWithAssignments(ctx context.Context, ids []uuid.UUID) ([]models.Duty, error)
}
