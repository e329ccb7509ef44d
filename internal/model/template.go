package model

import "time"

// RoleTemplate describes one obligation a role is expected to track.
// Exactly one of DaysAhead or SpecificDate must be set: DaysAhead schedules
// relative to resolution time, SpecificDate pins a fixed statutory date.
type RoleTemplate struct {
	Title             string     `yaml:"title"`
	Description       string     `yaml:"description"`
	Category          string     `yaml:"category"`
	IsRecurring       bool       `yaml:"is_recurring"`
	RecurrencePattern string     `yaml:"recurrence_pattern"`
	DaysAhead         int        `yaml:"days_ahead"`
	SpecificDate      *time.Time `yaml:"specific_date"`
}
