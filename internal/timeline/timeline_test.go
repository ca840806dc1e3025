package timeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/rbarrios/fleetduty-backend/internal/duties"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
)

func tripEndedAt(endedAt time.Time) *duties.TripView {
	return &duties.TripView{
		ID:        uuid.New(),
		StartedAt: endedAt.Add(-time.Hour),
		EndedAt:   &endedAt,
		Status:    enums.TripStatusCompleted,
	}
}

func TestClassifyNoTripIsScheduled(t *testing.T) {
	scheduledEnd := time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, enums.TimelineStatusScheduled, Classify(scheduledEnd, nil))
}

func TestClassifyRunningTripIsInProgress(t *testing.T) {
	scheduledEnd := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	trip := &duties.TripView{
		ID:        uuid.New(),
		StartedAt: scheduledEnd.Add(-2 * time.Hour),
		Status:    enums.TripStatusInProgress,
	}
	assert.Equal(t, enums.TimelineStatusInProgress, Classify(scheduledEnd, trip))
}

func TestClassifyGraceBoundary(t *testing.T) {
	scheduledEnd := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	onTime := scheduledEnd.Add(5 * time.Minute)
	assert.Equal(t, enums.TimelineStatusCompleted, Classify(scheduledEnd, tripEndedAt(onTime)))

	late := scheduledEnd.Add(5*time.Minute + time.Second)
	assert.Equal(t, enums.TimelineStatusDelayed, Classify(scheduledEnd, tripEndedAt(late)))

	early := scheduledEnd.Add(-30 * time.Minute)
	assert.Equal(t, enums.TimelineStatusCompleted, Classify(scheduledEnd, tripEndedAt(early)))
}

func TestPositionAtTimelineStart(t *testing.T) {
	start := time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC)
	span := Position(start, start.Add(time.Hour), 3)
	assert.Equal(t, 0.0, span.LeftPercent)
	assert.InDelta(t, 100.0/24, span.WidthPercent, 1e-9)
}

func TestPositionWrapsPastMidnight(t *testing.T) {
	start := time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 2, 30, 0, 0, time.UTC)
	span := Position(start, end, 3)
	assert.InDelta(t, 95.83, span.LeftPercent, 0.01)
	assert.InDelta(t, 2.08, span.WidthPercent, 0.01)
}

func TestPositionSpanCrossingWraparoundBoundary(t *testing.T) {
	start := time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC)
	end := time.Date(2026, 3, 3, 2, 45, 0, 0, time.UTC)
	span := Position(start, end, 3)
	// 23:30 is 20.5h after the 03:00 start; 02:45 wraps to 23.75h.
	assert.InDelta(t, 20.5/24*100, span.LeftPercent, 1e-9)
	assert.InDelta(t, 3.25/24*100, span.WidthPercent, 1e-9)
}

func TestPositionZeroDuration(t *testing.T) {
	at := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	span := Position(at, at, 0)
	assert.Equal(t, 50.0, span.LeftPercent)
	assert.Equal(t, 0.0, span.WidthPercent)
}
