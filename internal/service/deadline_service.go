package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"compliance-tracker/internal/catalog"
	"compliance-tracker/internal/model"
	"compliance-tracker/internal/recurrence"
	"compliance-tracker/internal/repository"
)

// DeadlineInput represents data required to create or update a deadline.
// The owner is passed separately on create and can never be changed through
// an update.
type DeadlineInput struct {
	Title             string
	Description       string
	DueAt             time.Time
	Category          string
	IsRecurring       bool
	RecurrencePattern string
	ReminderEnabled   bool
}

// DeadlineService wraps deadline business logic. All writes go through here
// so the recurrence and personalization invariants hold no matter which
// collaborator calls in.
type DeadlineService struct {
	deadlineRepo *repository.DeadlineRepository
	profileRepo  *repository.ProfileRepository
	catalog      *catalog.Catalog

	// seedLocks serializes check-then-seed per owner. Personalization must
	// run at most once per owner, and two concurrent first sessions would
	// otherwise both observe an empty deadline set. The tracker runs as a
	// single process, so an in-process lock is sufficient; the seed batch
	// itself is inserted in one transaction.
	seedLocks ownerLocks
}

func NewDeadlineService(deadlineRepo *repository.DeadlineRepository, profileRepo *repository.ProfileRepository, cat *catalog.Catalog) *DeadlineService {
	return &DeadlineService{
		deadlineRepo: deadlineRepo,
		profileRepo:  profileRepo,
		catalog:      cat,
	}
}

func (s *DeadlineService) Create(ctx context.Context, ownerID string, input DeadlineInput) (*model.Deadline, error) {
	if ownerID == "" {
		return nil, &model.ValidationError{Field: "owner_id", Reason: "owner is required"}
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if _, err := s.profileRepo.FindByOwner(ctx, ownerID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, &model.ValidationError{Field: "owner_id", Reason: "unknown owner"}
		}
		return nil, err
	}

	deadline := model.Deadline{
		ID:                uuid.NewString(),
		OwnerID:           ownerID,
		Title:             input.Title,
		Description:       input.Description,
		DueAt:             input.DueAt,
		Category:          input.Category,
		IsRecurring:       input.IsRecurring,
		RecurrencePattern: input.RecurrencePattern,
		ReminderEnabled:   input.ReminderEnabled,
	}

	if err := s.deadlineRepo.Create(ctx, &deadline); err != nil {
		return nil, err
	}
	return &deadline, nil
}

func (s *DeadlineService) Get(ctx context.Context, id string) (*model.Deadline, error) {
	return s.deadlineRepo.FindByID(ctx, id)
}

// ListByOwner returns the owner's deadlines ordered by due date.
func (s *DeadlineService) ListByOwner(ctx context.Context, ownerID string) ([]model.Deadline, error) {
	return s.deadlineRepo.ListByOwner(ctx, ownerID)
}

// Update edits the mutable fields of a deadline. The owner is fixed for the
// deadline's lifetime; completion state changes only via ToggleComplete.
func (s *DeadlineService) Update(ctx context.Context, id string, input DeadlineInput) (*model.Deadline, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	deadline, err := s.deadlineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	deadline.Title = input.Title
	deadline.Description = input.Description
	deadline.DueAt = input.DueAt
	deadline.Category = input.Category
	deadline.IsRecurring = input.IsRecurring
	deadline.RecurrencePattern = input.RecurrencePattern
	deadline.ReminderEnabled = input.ReminderEnabled

	if err := s.deadlineRepo.Save(ctx, deadline); err != nil {
		return nil, err
	}
	return deadline, nil
}

// Delete removes a deadline completely. Nothing cascades: successors created
// earlier stay untouched.
func (s *DeadlineService) Delete(ctx context.Context, id string) error {
	return s.deadlineRepo.Delete(ctx, id)
}

// ToggleComplete flips the completion state. Completing a recurring deadline
// also generates the next instance via the recurrence engine; the flag update
// and the successor insert happen in one transaction so the obligation is
// never dropped or duplicated by a crash in between. The successor is
// returned alongside the updated deadline, or nil when none was generated.
func (s *DeadlineService) ToggleComplete(ctx context.Context, id string, now time.Time) (*model.Deadline, *model.Deadline, error) {
	var updated *model.Deadline
	var successor *model.Deadline

	err := s.deadlineRepo.Transaction(ctx, func(tx *repository.DeadlineRepository) error {
		deadline, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}

		deadline.IsCompleted = !deadline.IsCompleted

		if deadline.IsCompleted && deadline.IsRecurring {
			next, err := recurrence.Advance(*deadline)
			if err != nil {
				return err
			}
			if err := tx.Create(ctx, &next); err != nil {
				return err
			}
			successor = &next
		}

		if err := tx.Save(ctx, deadline); err != nil {
			return err
		}
		updated = deadline
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, successor, nil
}

// EnsurePersonalized seeds the owner's initial deadline set from the role
// templates if the owner has none yet, and is a no-op otherwise. Safe to call
// on every session start. Returns the seeded batch, nil when nothing was done.
func (s *DeadlineService) EnsurePersonalized(ctx context.Context, ownerID, role string, now time.Time) ([]model.Deadline, error) {
	if ownerID == "" {
		return nil, &model.ValidationError{Field: "owner_id", Reason: "owner is required"}
	}

	lock := s.seedLocks.forOwner(ownerID)
	lock.Lock()
	defer lock.Unlock()

	count, err := s.deadlineRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	deadlines := s.catalog.Resolve(ownerID, role, now)
	err = s.deadlineRepo.Transaction(ctx, func(tx *repository.DeadlineRepository) error {
		return tx.CreateBatch(ctx, deadlines)
	})
	if err != nil {
		return nil, err
	}
	return deadlines, nil
}

func validateInput(input *DeadlineInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return &model.ValidationError{Field: "title", Reason: "title is required"}
	}
	if input.DueAt.IsZero() {
		return &model.ValidationError{Field: "due_at", Reason: "due date is required"}
	}
	if input.Category == "" {
		input.Category = model.CategoryCustom
	}
	if input.IsRecurring {
		if !model.ValidPattern(input.RecurrencePattern) {
			return &model.ValidationError{Field: "recurrence_pattern", Reason: "recurring deadlines need a monthly, quarterly or yearly pattern"}
		}
	} else {
		input.RecurrencePattern = ""
	}
	return nil
}

// ownerLocks hands out one mutex per owner id.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *ownerLocks) forOwner(ownerID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := l.locks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[ownerID] = lock
	}
	return lock
}
