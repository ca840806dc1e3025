package enums

import "fmt"

// DutyType describes the kind of work a duty represents.
type DutyType string

const (
	DutyTypeTrip        DutyType = "trip"
	DutyTypeWashing     DutyType = "washing"
	DutyTypeMaintenance DutyType = "maintenance"
)

var validDutyTypes = []DutyType{
	DutyTypeTrip,
	DutyTypeWashing,
	DutyTypeMaintenance,
}

// IsValid reports whether the value matches the canonical duty type enum.
func (d DutyType) IsValid() bool {
	for _, candidate := range validDutyTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDutyType converts the raw string to DutyType.
func ParseDutyType(value string) (DutyType, error) {
	for _, candidate := range validDutyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid duty type %q", value)
}
