package model

import "time"

// Deadline categories. Unknown values are kept as-is in storage and treated
// like CategoryCustom for display and urgency purposes.
const (
	CategoryTax       = "tax"
	CategoryLegal     = "legal"
	CategoryContracts = "contracts"
	CategoryCustom    = "custom"
)

// Recurrence patterns for deadlines with IsRecurring set.
const (
	PatternMonthly   = "monthly"
	PatternQuarterly = "quarterly"
	PatternYearly    = "yearly"
)

// Deadline represents a single compliance obligation with a due date.
type Deadline struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	OwnerID           string    `gorm:"index" json:"owner_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	DueAt             time.Time `json:"due_at"`
	Category          string    `json:"category"`
	IsRecurring       bool      `gorm:"default:false" json:"is_recurring"`
	RecurrencePattern string    `json:"recurrence_pattern,omitempty"`
	IsCompleted       bool      `gorm:"default:false" json:"is_completed"`
	// ReminderEnabled defaults to true, but in code rather than the schema:
	// a column default would make gorm drop an explicit false on insert.
	ReminderEnabled bool      `json:"reminder_enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ValidPattern reports whether p is a recognized recurrence pattern.
func ValidPattern(p string) bool {
	switch p {
	case PatternMonthly, PatternQuarterly, PatternYearly:
		return true
	}
	return false
}

// KnownCategory reports whether c is one of the closed category set.
func KnownCategory(c string) bool {
	switch c {
	case CategoryTax, CategoryLegal, CategoryContracts, CategoryCustom:
		return true
	}
	return false
}

// DisplayCategory returns the category used for styling and grouping,
// falling back to custom for unrecognized values.
func (d *Deadline) DisplayCategory() string {
	if KnownCategory(d.Category) {
		return d.Category
	}
	return CategoryCustom
}

// CalendarEvent is the calendar projection of a deadline. Start and End are
// both the due date; obligations have no duration.
type CalendarEvent struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CalendarEvent maps the deadline onto its calendar representation.
func (d *Deadline) CalendarEvent() CalendarEvent {
	return CalendarEvent{
		ID:    d.ID,
		Title: d.Title,
		Start: d.DueAt,
		End:   d.DueAt,
	}
}
