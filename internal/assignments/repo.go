package assignments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an assignments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindDutiesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Duty, error) {
	var duties []models.Duty
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&duties).Error
	if err != nil {
		return nil, err
	}
	return duties, nil
}

func (r *repository) FindDriverByID(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *repository) FindVehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) UpdateDutyAssignment(ctx context.Context, dutyID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Duty{}).
		Where("id = ?", dutyID).
		Updates(updates).Error
}

// FindDutiesWithAssignments reloads the duties with everything the caller
// needs to re-display them.
func (r *repository) FindDutiesWithAssignments(ctx context.Context, ids []uuid.UUID) ([]models.Duty, error) {
	var duties []models.Duty
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Preload("Driver").
		Preload("Vehicle").
		Preload("Block").
		Preload("Run").
		Preload("TripDuty").
		Preload("TripDuty.Route").
		Order("start_at ASC").
		Find(&duties).Error
	if err != nil {
		return nil, err
	}
	return duties, nil
}
