package timeline

import (
	"time"

	"github.com/rbarrios/fleetduty-backend/internal/duties"
	"github.com/rbarrios/fleetduty-backend/pkg/enums"
)

// Grace is the tolerance within which a late actual end still counts as
// on time.
const Grace = 5 * time.Minute

// Classify derives a duty's display status from its scheduled end and its
// attached actual trip. A duty with no trip is always scheduled, no matter
// how far in the past its window lies.
func Classify(scheduledEnd time.Time, trip *duties.TripView) enums.TimelineStatus {
	if trip == nil {
		return enums.TimelineStatusScheduled
	}
	if trip.EndedAt == nil {
		return enums.TimelineStatusInProgress
	}
	if !trip.EndedAt.After(scheduledEnd.Add(Grace)) {
		return enums.TimelineStatusCompleted
	}
	return enums.TimelineStatusDelayed
}

// Span is a horizontal placement on a 24-hour timeline, in percent.
type Span struct {
	LeftPercent  float64
	WidthPercent float64
}

// Position places a start/end pair on a 24-hour timeline whose display
// begins at startHour (0-23). Instants are reduced to UTC time of day; a
// span that crosses the timeline's wraparound boundary keeps a positive
// duration. A zero-duration span yields zero width; any minimum visible
// width is the renderer's concern.
func Position(start, end time.Time, startHour int) Span {
	adjustedStart := adjustHour(start, startHour)
	adjustedEnd := adjustHour(end, startHour)

	duration := adjustedEnd - adjustedStart
	if adjustedEnd < adjustedStart {
		duration = adjustedEnd + 24 - adjustedStart
	}

	return Span{
		LeftPercent:  adjustedStart / 24 * 100,
		WidthPercent: duration / 24 * 100,
	}
}

func adjustHour(t time.Time, startHour int) float64 {
	u := t.UTC()
	hour := float64(u.Hour()) + float64(u.Minute())/60 + float64(u.Second())/3600
	adjusted := hour - float64(startHour)
	if adjusted < 0 {
		adjusted += 24
	}
	return adjusted
}
