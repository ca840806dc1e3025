package liveboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rbarrios/fleetduty-backend/internal/duties"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
	"github.com/rbarrios/fleetduty-backend/pkg/livefeed"
	"github.com/rbarrios/fleetduty-backend/pkg/logger"
	"github.com/rbarrios/fleetduty-backend/pkg/metrics"
)

const (
	dropReasonUnsubscribed = "route_not_subscribed"
	dropReasonNoMatch      = "no_match"
	dropReasonEmptyPayload = "empty_payload"
)

// Snapshotter loads the baseline board for a date and route set.
type Snapshotter interface {
	ListTripDutyBoard(ctx context.Context, date string, routeIDs []uuid.UUID) ([]duties.TripDutyView, error)
}

// Board is the in-memory projection of one day's trip duties with live trip
// events merged on top. Events are applied in arrival order with no
// reordering or dedup: an end arriving before its start finds no attached
// trip and is dropped.
type Board struct {
	mu      sync.RWMutex
	snap    Snapshotter
	logg    *logger.Logger
	metrics *metrics.LiveboardMetrics

	date    string
	routes  map[uuid.UUID]struct{}
	entries []duties.TripDutyView
}

// NewBoard builds an empty board. Load must be called before events are
// applied; until then every event drops on the membership check.
func NewBoard(snap Snapshotter, logg *logger.Logger, m *metrics.LiveboardMetrics) (*Board, error) {
	if snap == nil {
		return nil, fmt.Errorf("board snapshotter required")
	}
	return &Board{
		snap:    snap,
		logg:    logg,
		metrics: m,
		routes:  make(map[uuid.UUID]struct{}),
	}, nil
}

// Load fetches the baseline list for the date and replaces the subscribed
// route set with routeIDs. Any live state applied before Load is discarded.
func (b *Board) Load(ctx context.Context, date string, routeIDs []uuid.UUID) error {
	started := time.Now()
	entries, err := b.snap.ListTripDutyBoard(ctx, date, routeIDs)
	if err != nil {
		return fmt.Errorf("load board snapshot: %w", err)
	}
	b.metrics.SnapshotObserve(time.Since(started))

	routes := make(map[uuid.UUID]struct{}, len(routeIDs))
	for _, id := range routeIDs {
		routes[id] = struct{}{}
	}

	b.mu.Lock()
	b.date = date
	b.routes = routes
	b.entries = entries
	b.mu.Unlock()
	return nil
}

// Refresh re-runs the snapshot for the current date and route set. Used
// after a feed reconnect, when events may have been missed.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.RLock()
	date := b.date
	routeIDs := make([]uuid.UUID, 0, len(b.routes))
	for id := range b.routes {
		routeIDs = append(routeIDs, id)
	}
	b.mu.RUnlock()

	if date == "" {
		return nil
	}
	return b.Load(ctx, date, routeIDs)
}

// Subscribe adds a route to the membership set without reloading.
func (b *Board) Subscribe(routeID uuid.UUID) {
	b.mu.Lock()
	b.routes[routeID] = struct{}{}
	b.mu.Unlock()
}

// Unsubscribe removes a route; its events stop mutating the board from the
// next Apply onward.
func (b *Board) Unsubscribe(routeID uuid.UUID) {
	b.mu.Lock()
	delete(b.routes, routeID)
	b.mu.Unlock()
}

// Entries returns a copy of the current board rows in snapshot order.
func (b *Board) Entries() []duties.TripDutyView {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]duties.TripDutyView, len(b.entries))
	copy(out, b.entries)
	return out
}

// Apply merges one feed event. Events for unsubscribed routes and events
// with no matching board row are dropped, counted by reason.
func (b *Board) Apply(ev livefeed.Event) {
	kind := string(ev.Kind)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.routes[ev.RouteID()]; !ok {
		b.metrics.DroppedInc(kind, dropReasonUnsubscribed)
		return
	}

	switch ev.Kind {
	case livefeed.KindTripStarted:
		b.applyStarted(ev.Started)
	case livefeed.KindTripEnded:
		b.applyEnded(ev.Ended)
	default:
		b.metrics.DroppedInc(kind, dropReasonEmptyPayload)
	}
}

func (b *Board) applyStarted(ev *livefeed.TripStarted) {
	kind := string(livefeed.KindTripStarted)
	if ev == nil {
		b.metrics.DroppedInc(kind, dropReasonEmptyPayload)
		return
	}
	for i := range b.entries {
		if b.entries[i].TripDutyID != ev.TripDutyID {
			continue
		}
		status := ev.Status
		if status == "" {
			status = enums.TripStatusInProgress
		}
		b.entries[i].Trip = &duties.TripView{
			ID:        ev.TripID,
			StartedAt: ev.StartedAt,
			EndedAt:   ev.EndedAt,
			Status:    status,
		}
		b.metrics.AppliedInc(kind)
		return
	}
	b.metrics.DroppedInc(kind, dropReasonNoMatch)
}

func (b *Board) applyEnded(ev *livefeed.TripEnded) {
	kind := string(livefeed.KindTripEnded)
	if ev == nil {
		b.metrics.DroppedInc(kind, dropReasonEmptyPayload)
		return
	}
	for i := range b.entries {
		trip := b.entries[i].Trip
		if trip == nil || trip.ID != ev.TripID {
			continue
		}
		endedAt := ev.EndedAt
		updated := *trip
		updated.EndedAt = &endedAt
		if ev.Status != "" {
			updated.Status = ev.Status
		} else {
			updated.Status = enums.TripStatusCompleted
		}
		b.entries[i].Trip = &updated
		b.metrics.AppliedInc(kind)
		return
	}
	b.metrics.DroppedInc(kind, dropReasonNoMatch)
}

// Run consumes the feed channel until the context is cancelled or the
// channel closes. The board is the only consumer; each event touches a
// single row, so no ordering beyond arrival order is imposed.
func (b *Board) Run(ctx context.Context, events <-chan livefeed.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			b.Apply(ev)
		}
	}
}
