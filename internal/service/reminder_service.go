package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"compliance-tracker/internal/model"
	"compliance-tracker/internal/repository"
	"compliance-tracker/internal/urgency"
)

// ReminderService computes which deadlines warrant a reminder and builds
// human-readable summaries for the notification collaborator. It never sends
// anything itself.
type ReminderService struct {
	deadlineRepo *repository.DeadlineRepository
}

func NewReminderService(deadlineRepo *repository.DeadlineRepository) *ReminderService {
	return &ReminderService{deadlineRepo: deadlineRepo}
}

// DueReminders returns the owner's reminder-enabled deadlines that are
// overdue or due soon, in due-date order.
func (s *ReminderService) DueReminders(ctx context.Context, ownerID string, now time.Time) ([]model.Deadline, error) {
	deadlines, err := s.deadlineRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var due []model.Deadline
	for _, d := range deadlines {
		if urgency.NeedsReminder(d, now) {
			due = append(due, d)
		}
	}
	return due, nil
}

// Summary renders the owner's open obligations as a Telegram-ready HTML
// message grouped by urgency. Returns an empty string when there is nothing
// to report.
func (s *ReminderService) Summary(ctx context.Context, ownerID string, now time.Time) (string, error) {
	deadlines, err := s.deadlineRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return "", err
	}

	var overdue, dueSoon []model.Deadline
	for _, d := range deadlines {
		if !d.ReminderEnabled {
			continue
		}
		switch urgency.Classify(d, now) {
		case urgency.StatusOverdue:
			overdue = append(overdue, d)
		case urgency.StatusDueSoon:
			dueSoon = append(dueSoon, d)
		}
	}

	if len(overdue) == 0 && len(dueSoon) == 0 {
		return "", nil
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Compliance reminders</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n", now.Format("2006-01-02")))

	if len(overdue) > 0 {
		builder.WriteString("\n⚠️ <b>Overdue</b>\n")
		for _, d := range overdue {
			builder.WriteString(formatDeadline(d))
		}
	}

	if len(dueSoon) > 0 {
		builder.WriteString("\n⏳ <b>Due soon</b>\n")
		for _, d := range dueSoon {
			builder.WriteString(formatDeadline(d))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatDeadline(d model.Deadline) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("• %s", html.EscapeString(strings.TrimSpace(d.Title))))
	sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", d.DisplayCategory()))
	sb.WriteString(fmt.Sprintf("\n   ⏰ due %s", d.DueAt.Format("2006-01-02")))
	if d.IsRecurring {
		sb.WriteString(fmt.Sprintf(" · ♻️ %s", d.RecurrencePattern))
	}
	sb.WriteByte('\n')
	return sb.String()
}
