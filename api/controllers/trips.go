package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rbarrios/fleetduty-backend/api/responses"
	"github.com/rbarrios/fleetduty-backend/api/validators"
	"github.com/rbarrios/fleetduty-backend/internal/trips"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
	"github.com/rbarrios/fleetduty-backend/pkg/logger"
)

type startTripRequest struct {
	DriverID  *uuid.UUID `json:"driver_id,omitempty"`
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

type endTripRequest struct {
	EndedAt *time.Time `json:"ended_at,omitempty"`
	Status  string     `json:"status,omitempty"`
}

func TripStart(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripDutyID, err := pathUUID(r, "tripDutyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req startTripRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := trips.StartTripInput{
			TripDutyID: tripDutyID,
			DriverID:   req.DriverID,
			VehicleID:  req.VehicleID,
		}
		if req.StartedAt != nil {
			input.StartedAt = req.StartedAt.UTC()
		}

		trip, err := svc.StartTrip(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, trip)
	}
}

func TripEnd(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := pathUUID(r, "tripId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req endTripRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := trips.EndTripInput{
			TripID: tripID,
			Status: enums.TripStatus(req.Status),
		}
		if req.EndedAt != nil {
			input.EndedAt = req.EndedAt.UTC()
		}

		trip, err := svc.EndTrip(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trip)
	}
}
