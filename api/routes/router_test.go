package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbarrios/fleetduty-backend/internal/assignments"
	"github.com/rbarrios/fleetduty-backend/internal/duties"
	"github.com/rbarrios/fleetduty-backend/internal/schedules"
	"github.com/rbarrios/fleetduty-backend/internal/trips"
	"github.com/rbarrios/fleetduty-backend/pkg/config"
	"github.com/rbarrios/fleetduty-backend/pkg/db/models"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
	pkgerrors "github.com/rbarrios/fleetduty-backend/pkg/errors"
	"github.com/rbarrios/fleetduty-backend/pkg/pagination"
)

type stubScheduleService struct{}

func (s *stubScheduleService) CreateSchedule(ctx context.Context, input schedules.CreateScheduleInput) (*models.ServiceSchedule, error) {
	return &models.ServiceSchedule{ID: uuid.New(), Name: input.Name}, nil
}

func (s *stubScheduleService) GetSchedule(ctx context.Context, id uuid.UUID) (*models.ServiceSchedule, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "schedule not found")
}

func (s *stubScheduleService) ListSchedules(ctx context.Context, params pagination.Params) (*schedules.ScheduleList, error) {
	return &schedules.ScheduleList{Schedules: []schedules.ScheduleSummary{}}, nil
}

func (s *stubScheduleService) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubScheduleService) CreateBlockTemplate(ctx context.Context, input schedules.CreatePatternTemplateInput) (*models.VehicleBlockTemplate, error) {
	return &models.VehicleBlockTemplate{ID: uuid.New(), Code: input.Code}, nil
}

func (s *stubScheduleService) CreateRunTemplate(ctx context.Context, input schedules.CreatePatternTemplateInput) (*models.DriverRunTemplate, error) {
	return &models.DriverRunTemplate{ID: uuid.New(), Code: input.Code}, nil
}

func (s *stubScheduleService) CreateDutyTemplate(ctx context.Context, input schedules.CreateDutyTemplateInput) (*models.DutyTemplate, error) {
	return &models.DutyTemplate{ID: uuid.New()}, nil
}

func (s *stubScheduleService) ListDutyTemplates(ctx context.Context, scheduleID uuid.UUID) ([]schedules.DutyTemplateView, error) {
	return nil, nil
}

type stubDutyService struct {
	materializeCalls int
	board            []duties.TripDutyView
}

func (s *stubDutyService) MaterializeTripDuties(ctx context.Context, input duties.MaterializeInput) (*duties.MaterializeResult, error) {
	s.materializeCalls++
	return &duties.MaterializeResult{}, nil
}

func (s *stubDutyService) MaterializeFromSchedule(ctx context.Context, input duties.MaterializeScheduleInput) (*duties.MaterializeResult, error) {
	return &duties.MaterializeResult{}, nil
}

func (s *stubDutyService) ListTripDutyBoard(ctx context.Context, date string, routeIDs []uuid.UUID) ([]duties.TripDutyView, error) {
	return s.board, nil
}

type stubAssignmentService struct{}

func (s *stubAssignmentService) BulkAssign(ctx context.Context, input assignments.BulkAssignInput) ([]models.Duty, error) {
	return []models.Duty{}, nil
}

type stubTripService struct{}

func (s *stubTripService) StartTrip(ctx context.Context, input trips.StartTripInput) (*models.Trip, error) {
	return &models.Trip{ID: uuid.New(), TripDutyID: input.TripDutyID, Status: enums.TripStatusInProgress}, nil
}

func (s *stubTripService) EndTrip(ctx context.Context, input trips.EndTripInput) (*models.Trip, error) {
	return &models.Trip{ID: input.TripID, Status: enums.TripStatusCompleted}, nil
}

func newTestRouter(t *testing.T, duty *stubDutyService) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Timeline.StartHour = 3
	return NewRouter(cfg, nil, nil, nil, &stubScheduleService{}, duty, &stubAssignmentService{}, &stubTripService{})
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t, &stubDutyService{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-FleetDuty-Env"))
}

func TestRouterHealthReadySkipsUnwiredDeps(t *testing.T) {
	router := newTestRouter(t, &stubDutyService{})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "ready", envelope.Data.Status)
	assert.Equal(t, "skipped", envelope.Data.Checks["db"])
	assert.Equal(t, "skipped", envelope.Data.Checks["redis"])
}

func TestRouterMaterializeRoute(t *testing.T) {
	duty := &stubDutyService{}
	router := newTestRouter(t, duty)

	body := `{"schedule_id":"` + uuid.NewString() + `","route_id":"` + uuid.NewString() + `","date":"2026-03-02","trips":[{"start_time":"06:00","end_time":"08:00"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/duties/materialize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, duty.materializeCalls)
}

func TestRouterMaterializeRejectsBadDate(t *testing.T) {
	duty := &stubDutyService{}
	router := newTestRouter(t, duty)

	body := `{"schedule_id":"` + uuid.NewString() + `","route_id":"` + uuid.NewString() + `","date":"03/02/2026","trips":[{"start_time":"06:00","end_time":"08:00"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/duties/materialize", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, duty.materializeCalls)
}

func TestRouterBoardClassifiesEntries(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	endedAt := date.Add(8 * time.Hour)
	duty := &stubDutyService{board: []duties.TripDutyView{
		{
			TripDutyID: uuid.New(),
			RouteID:    uuid.New(),
			Date:       date,
			StartAt:    date.Add(6 * time.Hour),
			EndAt:      date.Add(8 * time.Hour),
			DutyType:   enums.DutyTypeTrip,
		},
		{
			TripDutyID: uuid.New(),
			RouteID:    uuid.New(),
			Date:       date,
			StartAt:    date.Add(6 * time.Hour),
			EndAt:      date.Add(8 * time.Hour),
			DutyType:   enums.DutyTypeTrip,
			Trip: &duties.TripView{
				ID:        uuid.New(),
				StartedAt: date.Add(6 * time.Hour),
				EndedAt:   &endedAt,
				Status:    enums.TripStatusCompleted,
			},
		},
	}}
	router := newTestRouter(t, duty)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/board?date=2026-03-02", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			StartHour int `json:"timeline_start_hour"`
			Entries   []struct {
				TimelineStatus string  `json:"timeline_status"`
				LeftPercent    float64 `json:"left_percent"`
			} `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Entries, 2)
	assert.Equal(t, 3, envelope.Data.StartHour)
	assert.Equal(t, "scheduled", envelope.Data.Entries[0].TimelineStatus)
	assert.Equal(t, "completed", envelope.Data.Entries[1].TimelineStatus)
	// 06:00 on a timeline starting 03:00 sits an eighth of the way in.
	assert.InDelta(t, 12.5, envelope.Data.Entries[0].LeftPercent, 1e-9)
}

func TestRouterBoardRejectsBadDate(t *testing.T) {
	router := newTestRouter(t, &stubDutyService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/board?date=garbage", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterTripLifecycleRoutes(t *testing.T) {
	router := newTestRouter(t, &stubDutyService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/trip-duties/"+uuid.NewString()+"/trips", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/trips/"+uuid.NewString()+"/end", strings.NewReader(`{}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
