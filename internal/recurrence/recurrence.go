// Package recurrence advances recurring deadlines to their next instance
// using calendar-aware date arithmetic.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"compliance-tracker/internal/model"
)

// ErrNotRecurring is returned when Advance is asked to roll over a
// non-recurring deadline.
var ErrNotRecurring = errors.New("deadline is not recurring")

// Advance returns the successor instance of a recurring deadline. The next
// due date is one period after the current due date, never relative to now;
// the completed original is left untouched so past obligations stay on
// record. The successor gets a fresh id and an open completion state, all
// other fields are copied.
func Advance(d model.Deadline) (model.Deadline, error) {
	if !d.IsRecurring {
		return model.Deadline{}, ErrNotRecurring
	}

	dueAt, err := NextDue(d.DueAt, d.RecurrencePattern)
	if err != nil {
		return model.Deadline{}, err
	}

	next := d
	next.ID = uuid.NewString()
	next.DueAt = dueAt
	next.IsCompleted = false
	next.CreatedAt = time.Time{}
	next.UpdatedAt = time.Time{}
	return next, nil
}

// NextDue adds exactly one recurrence period to the given due date.
func NextDue(dueAt time.Time, pattern string) (time.Time, error) {
	switch pattern {
	case model.PatternMonthly:
		return addMonths(dueAt, 1), nil
	case model.PatternQuarterly:
		return addMonths(dueAt, 3), nil
	case model.PatternYearly:
		return addMonths(dueAt, 12), nil
	default:
		return time.Time{}, fmt.Errorf("invalid recurrence pattern %q", pattern)
	}
}

// addMonths shifts t by the given number of calendar months, clamping the day
// to the last valid day of the target month. time.AddDate normalizes overflow
// (Jan 31 + 1 month = Mar 3), which is wrong for statutory dates, so the
// target month is computed first and the day clamped afterwards.
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysInMonth(first.Month(), first.Year()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)
	return lastOfMonth.Day()
}
