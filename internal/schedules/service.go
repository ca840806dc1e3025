package schedules

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db"
	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
	pkgerrors "github.com/rbarrios/fleetduty-backend/pkg/errors"
	"github.com/rbarrios/fleetduty-backend/pkg/pagination"
	"github.com/rbarrios/fleetduty-backend/pkg/types"
)

const defaultPatternColor = "#888888"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the template store operations.
type Service interface {
	CreateSchedule(ctx context.Context, input CreateScheduleInput) (*models.ServiceSchedule, error)
	GetSchedule(ctx context.Context, id uuid.UUID) (*models.ServiceSchedule, error)
	ListSchedules(ctx context.Context, params pagination.Params) (*ScheduleList, error)
	DeleteSchedule(ctx context.Context, id uuid.UUID) error
	CreateBlockTemplate(ctx context.Context, input CreatePatternTemplateInput) (*models.VehicleBlockTemplate, error)
	CreateRunTemplate(ctx context.Context, input CreatePatternTemplateInput) (*models.DriverRunTemplate, error)
	CreateDutyTemplate(ctx context.Context, input CreateDutyTemplateInput) (*models.DutyTemplate, error)
	ListDutyTemplates(ctx context.Context, scheduleID uuid.UUID) ([]DutyTemplateView, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the template store service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("schedules repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateSchedule(ctx context.Context, input CreateScheduleInput) (*models.ServiceSchedule, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "schedule name required")
	}
	schedule, err := s.repo.CreateSchedule(ctx, &models.ServiceSchedule{Name: name})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create schedule")
	}
	return schedule, nil
}

func (s *service) GetSchedule(ctx context.Context, id uuid.UUID) (*models.ServiceSchedule, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "schedule id required")
	}
	schedule, err := s.repo.FindScheduleByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "schedule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load schedule")
	}
	return schedule, nil
}

func (s *service) ListSchedules(ctx context.Context, params pagination.Params) (*ScheduleList, error) {
	list, err := s.repo.ListSchedules(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list schedules")
	}
	return list, nil
}

// DeleteSchedule removes the schedule and its templates. Materialized duties
// are date-scoped rows with no schedule FK and survive the delete.
func (s *service) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "schedule id required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindScheduleByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "schedule not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load schedule")
		}
		if err := repo.DeleteTemplatesBySchedule(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete schedule templates")
		}
		if err := repo.DeleteSchedule(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete schedule")
		}
		return nil
	})
}

func (s *service) CreateBlockTemplate(ctx context.Context, input CreatePatternTemplateInput) (*models.VehicleBlockTemplate, error) {
	if err := s.validatePatternInput(ctx, input); err != nil {
		return nil, err
	}
	template := &models.VehicleBlockTemplate{
		ScheduleID: input.ScheduleID,
		Code:       strings.TrimSpace(input.Code),
		Color:      patternColor(input.Color),
	}
	created, err := s.repo.CreateBlockTemplate(ctx, template)
	if err != nil {
		if db.IsUniqueViolation(err, "ux_block_templates_schedule_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "block code already exists in schedule")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create block template")
	}
	return created, nil
}

func (s *service) CreateRunTemplate(ctx context.Context, input CreatePatternTemplateInput) (*models.DriverRunTemplate, error) {
	if err := s.validatePatternInput(ctx, input); err != nil {
		return nil, err
	}
	template := &models.DriverRunTemplate{
		ScheduleID: input.ScheduleID,
		Code:       strings.TrimSpace(input.Code),
		Color:      patternColor(input.Color),
	}
	created, err := s.repo.CreateRunTemplate(ctx, template)
	if err != nil {
		if db.IsUniqueViolation(err, "ux_run_templates_schedule_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "run code already exists in schedule")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create run template")
	}
	return created, nil
}

func (s *service) CreateDutyTemplate(ctx context.Context, input CreateDutyTemplateInput) (*models.DutyTemplate, error) {
	if input.ScheduleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "schedule id required")
	}
	if !input.DutyType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid duty type")
	}
	start, err := types.ParseTimeOfDay(input.StartTime)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid start time")
	}
	end, err := types.ParseTimeOfDay(input.EndTime)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid end time")
	}
	if !start.Before(end) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start time must be before end time")
	}
	if _, err := s.GetSchedule(ctx, input.ScheduleID); err != nil {
		return nil, err
	}

	template := &models.DutyTemplate{
		ScheduleID: input.ScheduleID,
		Name:       input.Name,
		StartTime:  start,
		EndTime:    end,
		DutyType:   input.DutyType,
		BlockCode:  normalizeCode(input.BlockCode),
		RunCode:    normalizeCode(input.RunCode),
	}
	created, err := s.repo.CreateDutyTemplate(ctx, template)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create duty template")
	}
	return created, nil
}

// ListDutyTemplates returns the schedule's duty windows with block/run codes
// resolved to code + color pairs.
func (s *service) ListDutyTemplates(ctx context.Context, scheduleID uuid.UUID) ([]DutyTemplateView, error) {
	if scheduleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "schedule id required")
	}
	templates, err := s.repo.ListDutyTemplates(ctx, scheduleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list duty templates")
	}
	blocks, err := s.repo.ListBlockTemplates(ctx, scheduleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list block templates")
	}
	runs, err := s.repo.ListRunTemplates(ctx, scheduleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list run templates")
	}

	blockByCode := make(map[string]PatternRef, len(blocks))
	for _, block := range blocks {
		blockByCode[block.Code] = PatternRef{Code: block.Code, Color: block.Color}
	}
	runByCode := make(map[string]PatternRef, len(runs))
	for _, run := range runs {
		runByCode[run.Code] = PatternRef{Code: run.Code, Color: run.Color}
	}

	views := make([]DutyTemplateView, 0, len(templates))
	for _, template := range templates {
		view := DutyTemplateView{
			ID:        template.ID,
			Name:      template.Name,
			StartTime: template.StartTime,
			EndTime:   template.EndTime,
			DutyType:  template.DutyType,
		}
		if template.BlockCode != nil {
			if ref, ok := blockByCode[*template.BlockCode]; ok {
				view.Block = &ref
			}
		}
		if template.RunCode != nil {
			if ref, ok := runByCode[*template.RunCode]; ok {
				view.Run = &ref
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *service) validatePatternInput(ctx context.Context, input CreatePatternTemplateInput) error {
	if input.ScheduleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "schedule id required")
	}
	if strings.TrimSpace(input.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "template code required")
	}
	_, err := s.GetSchedule(ctx, input.ScheduleID)
	return err
}

func patternColor(color string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return defaultPatternColor
	}
	return color
}

func normalizeCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
