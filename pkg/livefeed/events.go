package livefeed

import (
	"time"

	"github.com/google/uuid"

	"github.com/rbarrios/fleetduty-backend/pkg/enums"
)

// EventKind discriminates the live trip feed payloads.
type EventKind string

const (
	KindTripStarted EventKind = "trip:start"
	KindTripEnded   EventKind = "trip:end"
)

// TripStarted is published when a trip execution is recorded against a
// scheduled trip duty.
type TripStarted struct {
	TripDutyID uuid.UUID        `json:"tripDutyId"`
	TripID     uuid.UUID        `json:"tripId"`
	RouteID    uuid.UUID        `json:"routeId"`
	StartedAt  time.Time        `json:"startedAt"`
	EndedAt    *time.Time       `json:"endedAt,omitempty"`
	Status     enums.TripStatus `json:"status,omitempty"`
}

// TripEnded is published when a live trip's end is recorded. It carries the
// trip's own id, not the duty id: consumers match on the attached trip.
type TripEnded struct {
	TripID  uuid.UUID        `json:"tripId"`
	RouteID uuid.UUID        `json:"routeId"`
	EndedAt time.Time        `json:"endedAt"`
	Status  enums.TripStatus `json:"status,omitempty"`
}

// Event is the typed union delivered on a subscriber channel.
type Event struct {
	Kind    EventKind
	Started *TripStarted
	Ended   *TripEnded
}

// RouteID returns the route the event belongs to, for subscription routing.
func (e Event) RouteID() uuid.UUID {
	switch e.Kind {
	case KindTripStarted:
		if e.Started != nil {
			return e.Started.RouteID
		}
	case KindTripEnded:
		if e.Ended != nil {
			return e.Ended.RouteID
		}
	}
	return uuid.Nil
}
