package assignments

import "github.com/google/uuid"

// Assignment targets one duty with a driver and/or vehicle. At least one of
// the two must be set.
type Assignment struct {
	DutyID    uuid.UUID
	DriverID  *uuid.UUID
	VehicleID *uuid.UUID
}

// BulkAssignInput is the whole batch. It is validated up front and applied
// atomically: one bad item rejects everything.
type BulkAssignInput struct {
	Assignments []Assignment
}

// DutiesAssignedEvent is the outbox payload for a committed batch.
type DutiesAssignedEvent struct {
	DutyIDs []uuid.UUID `json:"duty_ids"`
}
