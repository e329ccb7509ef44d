// Package urgency derives a display status from a deadline and the current
// time. Classification is a pure read-side projection and never mutates.
package urgency

import (
	"time"

	"compliance-tracker/internal/model"
)

// DueSoonWindow is the horizon within which an open deadline is flagged as
// due soon. It governs reminder emphasis across every presentation surface.
const DueSoonWindow = 7 * 24 * time.Hour

// Status is the derived urgency of a deadline.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusDueSoon   Status = "due_soon"
	StatusNormal    Status = "normal"
)

// Classify returns the urgency of d at the given time. Rules apply in order,
// first match wins: completed dominates everything, then overdue, then the
// due-soon window, then normal.
func Classify(d model.Deadline, now time.Time) Status {
	switch {
	case d.IsCompleted:
		return StatusCompleted
	case d.DueAt.Before(now):
		return StatusOverdue
	case d.DueAt.Before(now.Add(DueSoonWindow)):
		return StatusDueSoon
	default:
		return StatusNormal
	}
}

// NeedsReminder reports whether a reminder should be surfaced for d: reminders
// are enabled and the deadline is either overdue or inside the due-soon
// window. Delivery is the notification collaborator's concern.
func NeedsReminder(d model.Deadline, now time.Time) bool {
	if !d.ReminderEnabled {
		return false
	}
	s := Classify(d, now)
	return s == StatusOverdue || s == StatusDueSoon
}
