package schedules

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
	"github.com/rbarrios/fleetduty-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a schedules repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSchedule(ctx context.Context, schedule *models.ServiceSchedule) (*models.ServiceSchedule, error) {
	if err := r.db.WithContext(ctx).Create(schedule).Error; err != nil {
		return nil, err
	}
	return schedule, nil
}

func (r *repository) FindScheduleByID(ctx context.Context, id uuid.UUID) (*models.ServiceSchedule, error) {
	var schedule models.ServiceSchedule
	err := r.db.WithContext(ctx).
		Preload("BlockTemplates").
		Preload("RunTemplates").
		Preload("DutyTemplates").
		Where("id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) ListSchedules(ctx context.Context, params pagination.Params) (*ScheduleList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.ServiceSchedule{}).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.ServiceSchedule
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	pageSize := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(rows) > pageSize {
		last := rows[pageSize-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:pageSize]
	}

	summaries := make([]ScheduleSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, ScheduleSummary{
			ID:        row.ID,
			Name:      row.Name,
			CreatedAt: row.CreatedAt,
		})
	}
	return &ScheduleList{Schedules: summaries, NextCursor: next}, nil
}

func (r *repository) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.ServiceSchedule{}).Error
}

// DeleteTemplatesBySchedule removes the owned template rows explicitly so the
// cascade does not depend on database-level FK behavior.
func (r *repository) DeleteTemplatesBySchedule(ctx context.Context, scheduleID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("schedule_id = ?", scheduleID).Delete(&models.DutyTemplate{}).Error; err != nil {
		return err
	}
	if err := db.Where("schedule_id = ?", scheduleID).Delete(&models.VehicleBlockTemplate{}).Error; err != nil {
		return err
	}
	return db.Where("schedule_id = ?", scheduleID).Delete(&models.DriverRunTemplate{}).Error
}

func (r *repository) CreateBlockTemplate(ctx context.Context, template *models.VehicleBlockTemplate) (*models.VehicleBlockTemplate, error) {
	if err := r.db.WithContext(ctx).Create(template).Error; err != nil {
		return nil, err
	}
	return template, nil
}

func (r *repository) CreateRunTemplate(ctx context.Context, template *models.DriverRunTemplate) (*models.DriverRunTemplate, error) {
	if err := r.db.WithContext(ctx).Create(template).Error; err != nil {
		return nil, err
	}
	return template, nil
}

func (r *repository) CreateDutyTemplate(ctx context.Context, template *models.DutyTemplate) (*models.DutyTemplate, error) {
	if err := r.db.WithContext(ctx).Create(template).Error; err != nil {
		return nil, err
	}
	return template, nil
}

func (r *repository) ListBlockTemplates(ctx context.Context, scheduleID uuid.UUID) ([]models.VehicleBlockTemplate, error) {
	var templates []models.VehicleBlockTemplate
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("code ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *repository) ListRunTemplates(ctx context.Context, scheduleID uuid.UUID) ([]models.DriverRunTemplate, error) {
	var templates []models.DriverRunTemplate
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("code ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *repository) ListDutyTemplates(ctx context.Context, scheduleID uuid.UUID) ([]models.DutyTemplate, error) {
	var templates []models.DutyTemplate
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("start_time ASC").
		Order("created_at ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}
