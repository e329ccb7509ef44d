package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"compliance-tracker/internal/assist"
	"compliance-tracker/internal/model"
	"compliance-tracker/internal/recurrence"
	"compliance-tracker/internal/service"
	"compliance-tracker/internal/urgency"
)

type deadlineRequest struct {
	OwnerID           string `json:"owner_id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	DueAt             string `json:"due_at"`
	Category          string `json:"category"`
	IsRecurring       bool   `json:"is_recurring"`
	RecurrencePattern string `json:"recurrence_pattern"`
	ReminderEnabled   *bool  `json:"reminder_enabled"`
}

// deadlineResponse is a deadline plus its derived urgency, so presentation
// layers never re-implement the classification rule.
type deadlineResponse struct {
	model.Deadline
	Status urgency.Status `json:"status"`
}

type sessionRequest struct {
	OwnerID        string `json:"owner_id"`
	Role           string `json:"role"`
	TelegramChatID int64  `json:"telegram_chat_id"`
}

type assistRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleSession is called by the auth collaborator once a session resolves a
// role: it records the profile and seeds the initial deadline set on first
// contact.
func (s *Server) handleSession(c echo.Context) error {
	var req sessionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.OwnerID == "" {
		return badRequest(c, "owner_id is required")
	}

	ctx := c.Request().Context()
	profile, err := s.profileRepo.Upsert(ctx, req.OwnerID, req.Role, req.TelegramChatID)
	if err != nil {
		return writeError(c, err)
	}

	seeded, err := s.deadlineSvc.EnsurePersonalized(ctx, req.OwnerID, req.Role, time.Now())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"owner_id": profile.OwnerID,
		"role":     profile.Role,
		"seeded":   len(seeded),
	})
}

func (s *Server) handleList(c echo.Context) error {
	ownerID := c.QueryParam("owner_id")
	if ownerID == "" {
		return badRequest(c, "owner_id query parameter is required")
	}

	deadlines, err := s.deadlineSvc.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err)
	}

	now := time.Now()
	items := make([]deadlineResponse, 0, len(deadlines))
	for _, d := range deadlines {
		items = append(items, deadlineResponse{Deadline: d, Status: urgency.Classify(d, now)})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count": len(items),
		"items": items,
	})
}

func (s *Server) handleCreate(c echo.Context) error {
	var req deadlineRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	input, err := req.toInput()
	if err != nil {
		return writeError(c, err)
	}

	deadline, err := s.deadlineSvc.Create(c.Request().Context(), req.OwnerID, input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, deadlineResponse{Deadline: *deadline, Status: urgency.Classify(*deadline, time.Now())})
}

func (s *Server) handleGet(c echo.Context) error {
	deadline, err := s.deadlineSvc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, deadlineResponse{Deadline: *deadline, Status: urgency.Classify(*deadline, time.Now())})
}

func (s *Server) handleUpdate(c echo.Context) error {
	var req deadlineRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	input, err := req.toInput()
	if err != nil {
		return writeError(c, err)
	}

	// The owner is immutable; a differing owner_id in the payload is an error
	// rather than a silent ignore.
	if req.OwnerID != "" {
		existing, err := s.deadlineSvc.Get(c.Request().Context(), c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		if existing.OwnerID != req.OwnerID {
			return writeError(c, &model.ValidationError{Field: "owner_id", Reason: "owner cannot be changed"})
		}
	}

	deadline, err := s.deadlineSvc.Update(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, deadlineResponse{Deadline: *deadline, Status: urgency.Classify(*deadline, time.Now())})
}

func (s *Server) handleDelete(c echo.Context) error {
	if err := s.deadlineSvc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleToggle(c echo.Context) error {
	deadline, next, err := s.deadlineSvc.ToggleComplete(c.Request().Context(), c.Param("id"), time.Now())
	if err != nil {
		return writeError(c, err)
	}

	resp := map[string]interface{}{
		"deadline": deadlineResponse{Deadline: *deadline, Status: urgency.Classify(*deadline, time.Now())},
	}
	if next != nil {
		resp["next"] = deadlineResponse{Deadline: *next, Status: urgency.Classify(*next, time.Now())}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCalendar(c echo.Context) error {
	ownerID := c.QueryParam("owner_id")
	if ownerID == "" {
		return badRequest(c, "owner_id query parameter is required")
	}

	deadlines, err := s.deadlineSvc.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err)
	}

	events := make([]model.CalendarEvent, 0, len(deadlines))
	for _, d := range deadlines {
		events = append(events, d.CalendarEvent())
	}
	return c.JSON(http.StatusOK, events)
}

func (s *Server) handleAssist(c echo.Context) error {
	var req assistRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Question == "" {
		return badRequest(c, "question is required")
	}
	return c.JSON(http.StatusOK, map[string]string{"answer": assist.Answer(req.Question)})
}

// toInput converts the wire shape into a service input, parsing the due date.
func (r *deadlineRequest) toInput() (service.DeadlineInput, error) {
	dueAt, err := parseDueAt(r.DueAt)
	if err != nil {
		return service.DeadlineInput{}, err
	}

	reminder := true
	if r.ReminderEnabled != nil {
		reminder = *r.ReminderEnabled
	}

	return service.DeadlineInput{
		Title:             r.Title,
		Description:       r.Description,
		DueAt:             dueAt,
		Category:          r.Category,
		IsRecurring:       r.IsRecurring,
		RecurrencePattern: r.RecurrencePattern,
		ReminderEnabled:   reminder,
	}, nil
}

// parseDueAt accepts a date or an RFC 3339 timestamp. Time-of-day is not
// required for obligations; date granularity is enough.
func parseDueAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, &model.ValidationError{Field: "due_at", Reason: "due date is required"}
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, &model.ValidationError{Field: "due_at", Reason: "due date must be YYYY-MM-DD or RFC 3339"}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps core errors onto HTTP statuses: validation and invalid
// operations are the caller's fault, missing ids are 404, conflicts 409, and
// anything else is a retryable 500.
func writeError(c echo.Context, err error) error {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": ve.Reason, "field": ve.Field})
	case errors.Is(err, recurrence.ErrNotRecurring):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, model.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "deadline not found"})
	case errors.Is(err, model.ErrConflict):
		return c.JSON(http.StatusConflict, map[string]string{"error": "conflicting write, retry"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "storage unavailable, retry later"})
	}
}
