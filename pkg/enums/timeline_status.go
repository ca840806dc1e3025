package enums

// TimelineStatus is the derived per-duty tag rendered on the duty board.
// It is a projection, never persisted.
type TimelineStatus string

const (
	TimelineStatusScheduled  TimelineStatus = "scheduled"
	TimelineStatusInProgress TimelineStatus = "in_progress"
	TimelineStatusCompleted  TimelineStatus = "completed"
	TimelineStatusDelayed    TimelineStatus = "delayed"
	TimelineStatusPending    TimelineStatus = "pending"
	TimelineStatusUnknown    TimelineStatus = "unknown"
)
