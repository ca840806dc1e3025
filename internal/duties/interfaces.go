package duties

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
)

// Repository defines persistence operations for duty materialization and the
// trip-duty board query.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindScheduleByID(ctx context.Context, id uuid.UUID) (*models.ServiceSchedule, error)
	FindRouteByID(ctx context.Context, id uuid.UUID) (*models.Route, error)
	FindBlockTemplate(ctx context.Context, scheduleID uuid.UUID, code string) (*models.VehicleBlockTemplate, error)
	FindRunTemplate(ctx context.Context, scheduleID uuid.UUID, code string) (*models.DriverRunTemplate, error)
	ListDutyTemplates(ctx context.Context, scheduleID uuid.UUID) ([]models.DutyTemplate, error)
	FindVehicleBlockByCode(ctx context.Context, code string) (*models.VehicleBlock, error)
	CreateVehicleBlock(ctx context.Context, block *models.VehicleBlock) (*models.VehicleBlock, error)
	FindDriverRunByCode(ctx context.Context, code string) (*models.DriverRun, error)
	CreateDriverRun(ctx context.Context, run *models.DriverRun) (*models.DriverRun, error)
	CreateDuty(ctx context.Context, duty *models.Duty) (*models.Duty, error)
	CreateTripDuty(ctx context.Context, tripDuty *models.TripDuty) (*models.TripDuty, error)
	ListTripDutiesForBoard(ctx context.Context, date time.Time, routeIDs []uuid.UUID) ([]models.TripDuty, error)
}
