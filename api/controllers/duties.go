package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rbarrios/fleetduty-backend/api/responses"
	"github.com/rbarrios/fleetduty-backend/api/validators"
	"github.com/rbarrios/fleetduty-backend/internal/duties"
	"github.com/rbarrios/fleetduty-backend/pkg/logger"
)

type tripSpecRequest struct {
	StartTime        string  `json:"start_time" validate:"required"`
	EndTime          string  `json:"end_time" validate:"required"`
	VehicleBlockCode *string `json:"vehicle_block_code,omitempty"`
	DriverRunCode    *string `json:"driver_run_code,omitempty"`
}

type materializeRequest struct {
	ScheduleID uuid.UUID         `json:"schedule_id" validate:"required"`
	RouteID    uuid.UUID         `json:"route_id" validate:"required"`
	Date       string            `json:"date" validate:"required,datetime=2006-01-02"`
	Trips      []tripSpecRequest `json:"trips" validate:"required,min=1,dive"`
}

type materializeScheduleRequest struct {
	ScheduleID uuid.UUID `json:"schedule_id" validate:"required"`
	RouteID    uuid.UUID `json:"route_id" validate:"required"`
	Date       string    `json:"date" validate:"required,datetime=2006-01-02"`
}

func DutiesMaterialize(svc duties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req materializeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		specs := make([]duties.TripSpec, 0, len(req.Trips))
		for _, trip := range req.Trips {
			specs = append(specs, duties.TripSpec{
				StartTime:        trip.StartTime,
				EndTime:          trip.EndTime,
				VehicleBlockCode: trip.VehicleBlockCode,
				DriverRunCode:    trip.DriverRunCode,
			})
		}

		result, err := svc.MaterializeTripDuties(r.Context(), duties.MaterializeInput{
			ScheduleID: req.ScheduleID,
			RouteID:    req.RouteID,
			Date:       req.Date,
			Trips:      specs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func DutiesMaterializeFromSchedule(svc duties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req materializeScheduleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MaterializeFromSchedule(r.Context(), duties.MaterializeScheduleInput{
			ScheduleID: req.ScheduleID,
			RouteID:    req.RouteID,
			Date:       req.Date,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
