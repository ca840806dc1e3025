package assignments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
	pkgerrors "github.com/rbarrios/fleetduty-backend/pkg/errors"
	"github.com/rbarrios/fleetduty-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the assignment reconciler.
type Service interface {
	BulkAssign(ctx context.Context, input BulkAssignInput) ([]models.Duty, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds the assignment reconciler.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

// BulkAssign applies the whole batch atomically after validating every item.
// It performs no double-booking check across overlapping duties.
func (s *service) BulkAssign(ctx context.Context, input BulkAssignInput) ([]models.Duty, error) {
	if len(input.Assignments) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one assignment required")
	}

	dutyIDs := make([]uuid.UUID, 0, len(input.Assignments))
	for i, assignment := range input.Assignments {
		if assignment.DutyID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("assignment %d: duty id required", i))
		}
		if assignment.DriverID == nil && assignment.VehicleID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("assignment %d: driver or vehicle required", i))
		}
		dutyIDs = append(dutyIDs, assignment.DutyID)
	}

	if err := s.validateTargets(ctx, input.Assignments, dutyIDs); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, assignment := range input.Assignments {
			updates := map[string]any{}
			if assignment.DriverID != nil {
				updates["driver_id"] = *assignment.DriverID
			}
			if assignment.VehicleID != nil {
				updates["vehicle_id"] = *assignment.VehicleID
			}
			if err := repo.UpdateDutyAssignment(ctx, assignment.DutyID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update duty assignment")
			}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDutiesAssigned,
			AggregateType: enums.AggregateDutyBatch,
			AggregateID:   uuid.New(),
			Version:       1,
			Data:          DutiesAssignedEvent{DutyIDs: dutyIDs},
		})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk assign")
	}

	duties, err := s.repo.FindDutiesWithAssignments(ctx, dutyIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload assigned duties")
	}
	return duties, nil
}

// validateTargets confirms every referenced duty, driver, and vehicle exists
// before any write happens.
func (s *service) validateTargets(ctx context.Context, assignments []Assignment, dutyIDs []uuid.UUID) error {
	duties, err := s.repo.FindDutiesByIDs(ctx, dutyIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load duties")
	}
	known := make(map[uuid.UUID]struct{}, len(duties))
	for _, duty := range duties {
		known[duty.ID] = struct{}{}
	}
	for _, id := range dutyIDs {
		if _, ok := known[id]; !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("duty %s not found", id))
		}
	}

	checkedDrivers := map[uuid.UUID]struct{}{}
	checkedVehicles := map[uuid.UUID]struct{}{}
	for _, assignment := range assignments {
		if assignment.DriverID != nil {
			id := *assignment.DriverID
			if _, ok := checkedDrivers[id]; !ok {
				if _, err := s.repo.FindDriverByID(ctx, id); err != nil {
					if err == gorm.ErrRecordNotFound {
						return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("driver %s not found", id))
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
				}
				checkedDrivers[id] = struct{}{}
			}
		}
		if assignment.VehicleID != nil {
			id := *assignment.VehicleID
			if _, ok := checkedVehicles[id]; !ok {
				if _, err := s.repo.FindVehicleByID(ctx, id); err != nil {
					if err == gorm.ErrRecordNotFound {
						return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("vehicle %s not found", id))
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
				}
				checkedVehicles[id] = struct{}{}
			}
		}
	}
	return nil
}
