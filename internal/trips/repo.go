package trips

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a trips repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindTripDutyByID(ctx context.Context, id uuid.UUID) (*models.TripDuty, error) {
	var tripDuty models.TripDuty
	err := r.db.WithContext(ctx).
		Preload("Duty").
		Where("id = ?", id).
		First(&tripDuty).Error
	if err != nil {
		return nil, err
	}
	return &tripDuty, nil
}

func (r *repository) FindActiveTripByTripDuty(ctx context.Context, tripDutyID uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).
		Where("trip_duty_id = ? AND ended_at IS NULL", tripDutyID).
		First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repository) CreateTrip(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	if err := r.db.WithContext(ctx).Create(trip).Error; err != nil {
		return nil, err
	}
	return trip, nil
}

func (r *repository) FindTripByID(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repository) UpdateTrip(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("id = ?", id).
		Updates(updates).Error
}
