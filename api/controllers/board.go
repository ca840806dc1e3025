package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rbarrios/fleetduty-backend/api/responses"
	"github.com/rbarrios/fleetduty-backend/internal/duties"
	"github.com/rbarrios/fleetduty-backend/internal/timeline"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
	pkgerrors "github.com/rbarrios/fleetduty-backend/pkg/errors"
	"github.com/rbarrios/fleetduty-backend/pkg/logger"

	"github.com/rbarrios/fleetduty-backend/api/validators"
)

const (
	boardCacheTTL = 5 * time.Second

	// Zero-length spans still need a visible sliver on the rendered board.
	minWidthPercent = 0.75
)

// BoardCache is the snapshot cache surface, satisfied by the redis client.
type BoardCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	BoardCacheKey(date string, routeIDs ...string) string
}

type boardRow struct {
	duties.TripDutyView
	TimelineStatus enums.TimelineStatus `json:"timeline_status"`
	LeftPercent    float64              `json:"left_percent"`
	WidthPercent   float64              `json:"width_percent"`
	TripSpan       *tripSpan            `json:"trip_span,omitempty"`
}

type tripSpan struct {
	LeftPercent  float64 `json:"left_percent"`
	WidthPercent float64 `json:"width_percent"`
}

type boardResponse struct {
	Date      string     `json:"date"`
	StartHour int        `json:"timeline_start_hour"`
	Entries   []boardRow `json:"entries"`
}

func Board(svc duties.Service, cache BoardCache, startHour int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := strings.TrimSpace(r.URL.Query().Get("date"))
		if _, err := time.Parse(duties.DateLayout, date); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD"))
			return
		}
		routeIDs, err := validators.ParseQueryUUIDList(r, "route_ids")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key := cacheKey(cache, date, routeIDs)
		if key != "" {
			if cached, getErr := cache.Get(r.Context(), key); getErr == nil && cached != "" {
				responses.WriteSuccess(w, json.RawMessage(cached))
				return
			} else if getErr != nil && !errors.Is(getErr, redis.Nil) && logg != nil {
				logg.Warn(logg.WithField(r.Context(), "cache_key", key), "board cache read failed")
			}
		}

		views, err := svc.ListTripDutyBoard(r.Context(), date, routeIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := boardResponse{
			Date:      date,
			StartHour: startHour,
			Entries:   buildBoardRows(views, startHour),
		}

		if key != "" {
			if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
				if setErr := cache.Set(r.Context(), key, string(payload), boardCacheTTL); setErr != nil && logg != nil {
					logg.Warn(logg.WithField(r.Context(), "cache_key", key), "board cache write failed")
				}
			}
		}

		responses.WriteSuccess(w, resp)
	}
}

func buildBoardRows(views []duties.TripDutyView, startHour int) []boardRow {
	rows := make([]boardRow, 0, len(views))
	now := time.Now().UTC()
	for _, view := range views {
		span := timeline.Position(view.StartAt, view.EndAt, startHour)
		row := boardRow{
			TripDutyView:   view,
			TimelineStatus: timeline.Classify(view.EndAt, view.Trip),
			LeftPercent:    span.LeftPercent,
			WidthPercent:   clampWidth(span.WidthPercent),
		}
		if view.Trip != nil {
			end := now
			if view.Trip.EndedAt != nil {
				end = *view.Trip.EndedAt
			}
			actual := timeline.Position(view.Trip.StartedAt, end, startHour)
			row.TripSpan = &tripSpan{
				LeftPercent:  actual.LeftPercent,
				WidthPercent: clampWidth(actual.WidthPercent),
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func clampWidth(width float64) float64 {
	if width < minWidthPercent {
		return minWidthPercent
	}
	return width
}

func cacheKey(cache BoardCache, date string, routeIDs []uuid.UUID) string {
	if cache == nil {
		return ""
	}
	tokens := make([]string, 0, len(routeIDs))
	for _, id := range routeIDs {
		tokens = append(tokens, id.String())
	}
	sort.Strings(tokens)
	return cache.BoardCacheKey(date, tokens...)
}
