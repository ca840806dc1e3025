package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rbarrios/fleetduty-backend/api/responses"
	"github.com/rbarrios/fleetduty-backend/api/validators"
	"github.com/rbarrios/fleetduty-backend/internal/assignments"
	"github.com/rbarrios/fleetduty-backend/pkg/logger"
)

type assignmentRequest struct {
	DutyID    uuid.UUID  `json:"duty_id" validate:"required"`
	DriverID  *uuid.UUID `json:"driver_id,omitempty"`
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty"`
}

type bulkAssignRequest struct {
	Assignments []assignmentRequest `json:"assignments" validate:"required,min=1,dive"`
}

func AssignmentsBulk(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkAssignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]assignments.Assignment, 0, len(req.Assignments))
		for _, item := range req.Assignments {
			items = append(items, assignments.Assignment{
				DutyID:    item.DutyID,
				DriverID:  item.DriverID,
				VehicleID: item.VehicleID,
			})
		}

		updated, err := svc.BulkAssign(r.Context(), assignments.BulkAssignInput{Assignments: items})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"duties": updated})
	}
}
