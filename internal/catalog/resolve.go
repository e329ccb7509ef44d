package catalog

import (
	"time"

	"github.com/google/uuid"

	"compliance-tracker/internal/model"
)

// Resolve builds the initial, unsaved deadline set for an owner from the
// templates matching the role. Relative templates are scheduled DaysAhead
// days from now; fixed statutory dates are used verbatim. Callers are
// responsible for running this at most once per owner.
func (c *Catalog) Resolve(ownerID, role string, now time.Time) []model.Deadline {
	templates := c.TemplatesFor(role)
	deadlines := make([]model.Deadline, 0, len(templates))
	for _, t := range templates {
		dueAt := now.AddDate(0, 0, t.DaysAhead)
		if t.SpecificDate != nil {
			dueAt = *t.SpecificDate
		}
		deadlines = append(deadlines, model.Deadline{
			ID:                uuid.NewString(),
			OwnerID:           ownerID,
			Title:             t.Title,
			Description:       t.Description,
			DueAt:             dueAt,
			Category:          t.Category,
			IsRecurring:       t.IsRecurring,
			RecurrencePattern: t.RecurrencePattern,
			IsCompleted:       false,
			ReminderEnabled:   true,
		})
	}
	return deadlines
}
