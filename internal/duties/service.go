package duties

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db"
	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
	pkgerrors "github.com/rbarrios/fleetduty-backend/pkg/errors"
	"github.com/rbarrios/fleetduty-backend/pkg/outbox"
	"github.com/rbarrios/fleetduty-backend/pkg/types"
)

// DateLayout is the calendar-day form used in inputs and instance codes.
const DateLayout = "2006-01-02"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines duty materialization and the board query surface.
type Service interface {
	MaterializeTripDuties(ctx context.Context, input MaterializeInput) (*MaterializeResult, error)
	MaterializeFromSchedule(ctx context.Context, input MaterializeScheduleInput) (*MaterializeResult, error)
	ListTripDutyBoard(ctx context.Context, date string, routeIDs []uuid.UUID) ([]TripDutyView, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds the duty materializer.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("duties repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

// parsedSpec is a validated duty window ready for creation.
type parsedSpec struct {
	start     types.TimeOfDay
	end       types.TimeOfDay
	dutyType  enums.DutyType
	blockCode *string
	runCode   *string
}

func (s *service) MaterializeTripDuties(ctx context.Context, input MaterializeInput) (*MaterializeResult, error) {
	date, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}
	if len(input.Trips) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one trip spec required")
	}

	specs := make([]parsedSpec, 0, len(input.Trips))
	for i, trip := range input.Trips {
		spec, err := parseTripSpec(i, trip)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	if err := s.requireScheduleAndRoute(ctx, input.ScheduleID, input.RouteID); err != nil {
		return nil, err
	}

	var result *MaterializeResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		batch, err := s.materializeBatch(ctx, repo, input.ScheduleID, input.RouteID, date, specs)
		if err != nil {
			return err
		}
		if err := s.emitMaterialized(ctx, tx, input.ScheduleID, input.RouteID, input.Date, batch); err != nil {
			return err
		}
		result = batch
		return nil
	})
	if err != nil {
		return nil, asMaterializationError(err)
	}
	return result, nil
}

// MaterializeFromSchedule expands the schedule's stored duty templates for the
// date: trip templates become trip duties on the route, washing/maintenance
// templates become plain duties.
func (s *service) MaterializeFromSchedule(ctx context.Context, input MaterializeScheduleInput) (*MaterializeResult, error) {
	date, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}
	if err := s.requireScheduleAndRoute(ctx, input.ScheduleID, input.RouteID); err != nil {
		return nil, err
	}

	templates, err := s.repo.ListDutyTemplates(ctx, input.ScheduleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list duty templates")
	}
	if len(templates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "schedule has no duty templates")
	}

	specs := make([]parsedSpec, 0, len(templates))
	for _, template := range templates {
		specs = append(specs, parsedSpec{
			start:     template.StartTime,
			end:       template.EndTime,
			dutyType:  template.DutyType,
			blockCode: template.BlockCode,
			runCode:   template.RunCode,
		})
	}

	var result *MaterializeResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		batch, err := s.materializeBatch(ctx, repo, input.ScheduleID, input.RouteID, date, specs)
		if err != nil {
			return err
		}
		if err := s.emitMaterialized(ctx, tx, input.ScheduleID, input.RouteID, input.Date, batch); err != nil {
			return err
		}
		result = batch
		return nil
	})
	if err != nil {
		return nil, asMaterializationError(err)
	}
	return result, nil
}

// materializeBatch runs steps 2-4 of the materialization contract against a
// transaction-scoped repository. The caller owns the transaction boundary.
func (s *service) materializeBatch(ctx context.Context, repo Repository, scheduleID, routeID uuid.UUID, date time.Time, specs []parsedSpec) (*MaterializeResult, error) {
	blocks, err := s.resolveBlocks(ctx, repo, scheduleID, date, specs)
	if err != nil {
		return nil, err
	}
	runs, err := s.resolveRuns(ctx, repo, scheduleID, date, specs)
	if err != nil {
		return nil, err
	}

	result := &MaterializeResult{
		Duties:     make([]models.Duty, 0, len(specs)),
		TripDuties: make([]models.TripDuty, 0, len(specs)),
	}
	for _, spec := range specs {
		duty := &models.Duty{
			Date:     date,
			StartAt:  spec.start.On(date),
			EndAt:    spec.end.On(date),
			DutyType: spec.dutyType,
		}
		if spec.blockCode != nil {
			block := blocks[*spec.blockCode]
			duty.BlockID = &block.ID
		}
		if spec.runCode != nil {
			run := runs[*spec.runCode]
			duty.RunID = &run.ID
		}
		created, err := repo.CreateDuty(ctx, duty)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create duty")
		}
		result.Duties = append(result.Duties, *created)

		if spec.dutyType != enums.DutyTypeTrip {
			continue
		}
		tripDuty, err := repo.CreateTripDuty(ctx, &models.TripDuty{
			DutyID:  created.ID,
			RouteID: routeID,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create trip duty")
		}
		result.TripDuties = append(result.TripDuties, *tripDuty)
	}
	return result, nil
}

// resolveBlocks finds or creates the date-scoped VehicleBlock for each
// distinct block code. The UNIQUE(code) index is the safety net when two
// concurrent calls both miss the find step.
func (s *service) resolveBlocks(ctx context.Context, repo Repository, scheduleID uuid.UUID, date time.Time, specs []parsedSpec) (map[string]*models.VehicleBlock, error) {
	resolved := make(map[string]*models.VehicleBlock)
	for _, spec := range specs {
		if spec.blockCode == nil {
			continue
		}
		code := *spec.blockCode
		if _, ok := resolved[code]; ok {
			continue
		}

		template, err := repo.FindBlockTemplate(ctx, scheduleID, code)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("block code %q not found in schedule", code))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load block template")
		}

		uniqueCode := instanceCode(code, date)
		existing, err := repo.FindVehicleBlockByCode(ctx, uniqueCode)
		if err == nil {
			resolved[code] = existing
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find vehicle block")
		}

		created, err := repo.CreateVehicleBlock(ctx, &models.VehicleBlock{
			Code:       uniqueCode,
			TemplateID: template.ID,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "ux_vehicle_blocks_code") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("vehicle block %q created concurrently", uniqueCode))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle block")
		}
		resolved[code] = created
	}
	return resolved, nil
}

func (s *service) resolveRuns(ctx context.Context, repo Repository, scheduleID uuid.UUID, date time.Time, specs []parsedSpec) (map[string]*models.DriverRun, error) {
	resolved := make(map[string]*models.DriverRun)
	for _, spec := range specs {
		if spec.runCode == nil {
			continue
		}
		code := *spec.runCode
		if _, ok := resolved[code]; ok {
			continue
		}

		template, err := repo.FindRunTemplate(ctx, scheduleID, code)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("run code %q not found in schedule", code))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load run template")
		}

		uniqueCode := instanceCode(code, date)
		existing, err := repo.FindDriverRunByCode(ctx, uniqueCode)
		if err == nil {
			resolved[code] = existing
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find driver run")
		}

		created, err := repo.CreateDriverRun(ctx, &models.DriverRun{
			Code:       uniqueCode,
			TemplateID: template.ID,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "ux_driver_runs_code") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("driver run %q created concurrently", uniqueCode))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create driver run")
		}
		resolved[code] = created
	}
	return resolved, nil
}

// ListTripDutyBoard is the board snapshot: the date's trip duties for the
// route set, joined with assignment and the most recent actual trip.
func (s *service) ListTripDutyBoard(ctx context.Context, date string, routeIDs []uuid.UUID) ([]TripDutyView, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	tripDuties, err := s.repo.ListTripDutiesForBoard(ctx, day, routeIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trip duty board")
	}

	views := make([]TripDutyView, 0, len(tripDuties))
	for _, tripDuty := range tripDuties {
		if tripDuty.Duty == nil {
			continue
		}
		views = append(views, buildBoardEntry(tripDuty))
	}
	return views, nil
}

func buildBoardEntry(tripDuty models.TripDuty) TripDutyView {
	duty := tripDuty.Duty
	view := TripDutyView{
		TripDutyID: tripDuty.ID,
		DutyID:     duty.ID,
		RouteID:    tripDuty.RouteID,
		Date:       duty.Date,
		StartAt:    duty.StartAt,
		EndAt:      duty.EndAt,
		DutyType:   duty.DutyType,
	}
	if duty.Driver != nil {
		view.Driver = &PersonRef{
			ID:   duty.Driver.ID,
			Name: strings.TrimSpace(duty.Driver.FirstName + " " + duty.Driver.LastName),
		}
	}
	if duty.Vehicle != nil {
		view.Vehicle = &VehicleRef{
			ID:          duty.Vehicle.ID,
			PlateNumber: duty.Vehicle.PlateNumber,
		}
	}
	if duty.Block != nil {
		code := duty.Block.Code
		view.BlockCode = &code
	}
	if duty.Run != nil {
		code := duty.Run.Code
		view.RunCode = &code
	}
	if len(tripDuty.Trips) > 0 {
		latest := tripDuty.Trips[len(tripDuty.Trips)-1]
		view.Trip = &TripView{
			ID:        latest.ID,
			StartedAt: latest.StartedAt,
			EndedAt:   latest.EndedAt,
			Status:    latest.Status,
		}
	}
	return view
}

func (s *service) requireScheduleAndRoute(ctx context.Context, scheduleID, routeID uuid.UUID) error {
	if scheduleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "schedule id required")
	}
	if routeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "route id required")
	}
	if _, err := s.repo.FindScheduleByID(ctx, scheduleID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "schedule not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load schedule")
	}
	if _, err := s.repo.FindRouteByID(ctx, routeID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "route not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load route")
	}
	return nil
}

func (s *service) emitMaterialized(ctx context.Context, tx *gorm.DB, scheduleID, routeID uuid.UUID, date string, batch *MaterializeResult) error {
	dutyIDs := make([]uuid.UUID, 0, len(batch.Duties))
	for _, duty := range batch.Duties {
		dutyIDs = append(dutyIDs, duty.ID)
	}
	tripDutyIDs := make([]uuid.UUID, 0, len(batch.TripDuties))
	for _, tripDuty := range batch.TripDuties {
		tripDutyIDs = append(tripDutyIDs, tripDuty.ID)
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventDutiesMaterialized,
		AggregateType: enums.AggregateDutyBatch,
		AggregateID:   uuid.New(),
		Version:       1,
		Data: DutiesMaterializedEvent{
			ScheduleID:  scheduleID,
			RouteID:     routeID,
			Date:        date,
			DutyIDs:     dutyIDs,
			TripDutyIDs: tripDutyIDs,
		},
	})
}

func parseDate(raw string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date")
	}
	return parsed, nil
}

func parseTripSpec(index int, spec TripSpec) (parsedSpec, error) {
	start, err := types.ParseTimeOfDay(spec.StartTime)
	if err != nil {
		return parsedSpec{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("trip %d: invalid start time", index))
	}
	end, err := types.ParseTimeOfDay(spec.EndTime)
	if err != nil {
		return parsedSpec{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("trip %d: invalid end time", index))
	}
	if !start.Before(end) {
		return parsedSpec{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("trip %d: start time must be before end time", index))
	}
	return parsedSpec{
		start:     start,
		end:       end,
		dutyType:  enums.DutyTypeTrip,
		blockCode: normalizeCode(spec.VehicleBlockCode),
		runCode:   normalizeCode(spec.DriverRunCode),
	}, nil
}

func instanceCode(code string, date time.Time) string {
	return fmt.Sprintf("%s-%s", code, date.Format(DateLayout))
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

// asMaterializationError keeps typed validation/not-found/conflict errors as
// they are; any other mid-transaction failure surfaces as a single
// dependency error because the whole batch rolled back.
func asMaterializationError(err error) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "materialization failed, no duties were created")
}
