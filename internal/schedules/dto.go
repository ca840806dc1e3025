package schedules

import (
	"time"

	"github.com/google/uuid"

	"github.com/rbarrios/fleetduty-backend/pkg/enums"
	"github.com/rbarrios/fleetduty-backend/pkg/types"
)

// CreateScheduleInput names a new template set.
type CreateScheduleInput struct {
	Name string
}

// CreatePatternTemplateInput covers both block and run templates.
type CreatePatternTemplateInput struct {
	ScheduleID uuid.UUID
	Code       string
	Color      string
}

// CreateDutyTemplateInput captures a recurring duty window.
type CreateDutyTemplateInput struct {
	ScheduleID uuid.UUID
	Name       *string
	StartTime  string
	EndTime    string
	DutyType   enums.DutyType
	BlockCode  *string
	RunCode    *string
}

// PatternRef is a resolved block/run reference for display.
type PatternRef struct {
	Code  string `json:"code"`
	Color string `json:"color"`
}

// DutyTemplateView is a duty template with its block/run codes resolved to
// code + color pairs.
type DutyTemplateView struct {
	ID        uuid.UUID       `json:"id"`
	Name      *string         `json:"name,omitempty"`
	StartTime types.TimeOfDay `json:"start_time"`
	EndTime   types.TimeOfDay `json:"end_time"`
	DutyType  enums.DutyType  `json:"duty_type"`
	Block     *PatternRef     `json:"block,omitempty"`
	Run       *PatternRef     `json:"run,omitempty"`
}

// ScheduleSummary is the list row for a schedule.
type ScheduleSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ScheduleList wraps the paginated schedules plus the next page cursor.
type ScheduleList struct {
	Schedules  []ScheduleSummary `json:"schedules"`
	NextCursor string            `json:"next_cursor,omitempty"`
}
