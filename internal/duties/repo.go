package duties

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a duties repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindScheduleByID(ctx context.Context, id uuid.UUID) (*models.ServiceSchedule, error) {
	var schedule models.ServiceSchedule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) FindRouteByID(ctx context.Context, id uuid.UUID) (*models.Route, error) {
	var route models.Route
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&route).Error
	if err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *repository) FindBlockTemplate(ctx context.Context, scheduleID uuid.UUID, code string) (*models.VehicleBlockTemplate, error) {
	var template models.VehicleBlockTemplate
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND code = ?", scheduleID, code).
		First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *repository) FindRunTemplate(ctx context.Context, scheduleID uuid.UUID, code string) (*models.DriverRunTemplate, error) {
	var template models.DriverRunTemplate
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND code = ?", scheduleID, code).
		First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *repository) ListDutyTemplates(ctx context.Context, scheduleID uuid.UUID) ([]models.DutyTemplate, error) {
	var templates []models.DutyTemplate
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("start_time ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *repository) FindVehicleBlockByCode(ctx context.Context, code string) (*models.VehicleBlock, error) {
	var block models.VehicleBlock
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *repository) CreateVehicleBlock(ctx context.Context, block *models.VehicleBlock) (*models.VehicleBlock, error) {
	if err := r.db.WithContext(ctx).Create(block).Error; err != nil {
		return nil, err
	}
	return block, nil
}

func (r *repository) FindDriverRunByCode(ctx context.Context, code string) (*models.DriverRun, error) {
	var run models.DriverRun
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) CreateDriverRun(ctx context.Context, run *models.DriverRun) (*models.DriverRun, error) {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *repository) CreateDuty(ctx context.Context, duty *models.Duty) (*models.Duty, error) {
	if err := r.db.WithContext(ctx).Create(duty).Error; err != nil {
		return nil, err
	}
	return duty, nil
}

func (r *repository) CreateTripDuty(ctx context.Context, tripDuty *models.TripDuty) (*models.TripDuty, error) {
	if err := r.db.WithContext(ctx).Create(tripDuty).Error; err != nil {
		return nil, err
	}
	return tripDuty, nil
}

// ListTripDutiesForBoard loads the date's trip duties for the given routes
// with everything the board needs: duty, assignment, block/run, trips.
func (r *repository) ListTripDutiesForBoard(ctx context.Context, date time.Time, routeIDs []uuid.UUID) ([]models.TripDuty, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN duties ON duties.id = trip_duties.duty_id").
		Where("duties.date = ?", date).
		Order("duties.start_at ASC").
		Preload("Duty.Driver").
		Preload("Duty.Vehicle").
		Preload("Duty.Block").
		Preload("Duty.Run").
		Preload("Duty").
		Preload("Trips", func(db *gorm.DB) *gorm.DB {
			return db.Order("started_at ASC")
		})
	if len(routeIDs) > 0 {
		query = query.Where("trip_duties.route_id IN ?", routeIDs)
	}

	var tripDuties []models.TripDuty
	if err := query.Find(&tripDuties).Error; err != nil {
		return nil, err
	}
	return tripDuties, nil
}
