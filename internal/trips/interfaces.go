package trips

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
)

// Repository defines persistence operations for trip executions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindTripDutyByID(ctx context.Context, id uuid.UUID) (*models.TripDuty, error)
	FindActiveTripByTripDuty(ctx context.Context, tripDutyID uuid.UUID) (*models.Trip, error)
	CreateTrip(ctx context.Context, trip *models.Trip) (*models.Trip, error)
	FindTripByID(ctx context.Context, id uuid.UUID) (*models.Trip, error)
	UpdateTrip(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
