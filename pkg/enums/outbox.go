package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column in outbox_events.
type OutboxAggregateType string

const (
	AggregateDutyBatch OutboxAggregateType = "duty_batch"
	AggregateDuty      OutboxAggregateType = "duty"
	AggregateTrip      OutboxAggregateType = "trip"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateDutyBatch,
	AggregateDuty,
	AggregateTrip,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// OutboxEventType maps to the event_type column in outbox_events.
type OutboxEventType string

const (
	EventDutiesMaterialized OutboxEventType = "duties.materialized"
	EventDutiesAssigned     OutboxEventType = "duties.assigned"
	EventTripStarted        OutboxEventType = "trip.started"
	EventTripEnded          OutboxEventType = "trip.ended"
)

var validOutboxEventTypes = []OutboxEventType{
	EventDutiesMaterialized,
	EventDutiesAssigned,
	EventTripStarted,
	EventTripEnded,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
