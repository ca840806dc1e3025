package enums

import "fmt"

// TripStatus tracks the lifecycle of an actual trip execution.
type TripStatus string

const (
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCanceled   TripStatus = "canceled"
)

var validTripStatuses = []TripStatus{
	TripStatusInProgress,
	TripStatusCompleted,
	TripStatusCanceled,
}

// IsValid reports whether the value matches the canonical trip status enum.
func (s TripStatus) IsValid() bool {
	for _, candidate := range validTripStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTripStatus converts the raw string to TripStatus.
func ParseTripStatus(value string) (TripStatus, error) {
	for _, candidate := range validTripStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trip status %q", value)
}
