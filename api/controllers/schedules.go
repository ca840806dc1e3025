package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rbarrios/fleetduty-backend/api/responses"
	"github.com/rbarrios/fleetduty-backend/api/validators"
	"github.com/rbarrios/fleetduty-backend/internal/schedules"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
	pkgerrors "github.com/rbarrios/fleetduty-backend/pkg/errors"
	"github.com/rbarrios/fleetduty-backend/pkg/logger"
	"github.com/rbarrios/fleetduty-backend/pkg/pagination"
)

type createScheduleRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type createPatternTemplateRequest struct {
	Code  string `json:"code" validate:"required,min=1,max=32"`
	Color string `json:"color" validate:"omitempty,max=16"`
}

type createDutyTemplateRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=120"`
	StartTime string  `json:"start_time" validate:"required"`
	EndTime   string  `json:"end_time" validate:"required"`
	DutyType  string  `json:"duty_type" validate:"required"`
	BlockCode *string `json:"block_code,omitempty"`
	RunCode   *string `json:"run_code,omitempty"`
}

func ScheduleCreate(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createScheduleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		schedule, err := svc.CreateSchedule(r.Context(), schedules.CreateScheduleInput{Name: req.Name})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, schedule)
	}
}

func ScheduleDetail(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "scheduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		schedule, err := svc.GetSchedule(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, schedule)
	}
}

func ScheduleList(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListSchedules(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ScheduleDelete(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "scheduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteSchedule(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func ScheduleCreateBlockTemplate(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduleID, err := pathUUID(r, "scheduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req createPatternTemplateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		template, err := svc.CreateBlockTemplate(r.Context(), schedules.CreatePatternTemplateInput{
			ScheduleID: scheduleID,
			Code:       req.Code,
			Color:      req.Color,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, template)
	}
}

func ScheduleCreateRunTemplate(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduleID, err := pathUUID(r, "scheduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req createPatternTemplateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		template, err := svc.CreateRunTemplate(r.Context(), schedules.CreatePatternTemplateInput{
			ScheduleID: scheduleID,
			Code:       req.Code,
			Color:      req.Color,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, template)
	}
}

func ScheduleCreateDutyTemplate(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduleID, err := pathUUID(r, "scheduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req createDutyTemplateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		template, err := svc.CreateDutyTemplate(r.Context(), schedules.CreateDutyTemplateInput{
			ScheduleID: scheduleID,
			Name:       req.Name,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			DutyType:   enums.DutyType(req.DutyType),
			BlockCode:  req.BlockCode,
			RunCode:    req.RunCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, template)
	}
}

func ScheduleListDutyTemplates(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduleID, err := pathUUID(r, "scheduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		templates, err := svc.ListDutyTemplates(r.Context(), scheduleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"duty_templates": templates})
	}
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a uuid").WithDetails(map[string]any{"field": param})
	}
	return id, nil
}
