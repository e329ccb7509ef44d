package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"compliance-tracker/internal/catalog"
	"compliance-tracker/internal/model"
	"compliance-tracker/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test so state never leaks between tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*DeadlineService, *repository.DeadlineRepository, *repository.ProfileRepository) {
	t.Helper()
	db := newTestDB(t)
	deadlineRepo := repository.NewDeadlineRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	return NewDeadlineService(deadlineRepo, profileRepo, catalog.Builtin()), deadlineRepo, profileRepo
}

func seedOwner(t *testing.T, profiles *repository.ProfileRepository, ownerID, role string) {
	t.Helper()
	if _, err := profiles.Upsert(context.Background(), ownerID, role, 0); err != nil {
		t.Fatalf("upsert profile: %v", err)
	}
}

var testNow = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func TestEnsurePersonalized_SeedsOnce(t *testing.T) {
	svc, repo, profiles := newTestService(t)
	ctx := context.Background()
	seedOwner(t, profiles, "owner-1", model.RoleStartup)

	first, err := svc.EnsurePersonalized(ctx, "owner-1", model.RoleStartup, testNow)
	if err != nil {
		t.Fatalf("first EnsurePersonalized: %v", err)
	}
	want := len(catalog.Builtin().TemplatesFor(model.RoleStartup))
	if len(first) != want {
		t.Fatalf("seeded %d deadlines, want %d", len(first), want)
	}

	second, err := svc.EnsurePersonalized(ctx, "owner-1", model.RoleStartup, testNow)
	if err != nil {
		t.Fatalf("second EnsurePersonalized: %v", err)
	}
	if second != nil {
		t.Errorf("second call must be a no-op, seeded %d", len(second))
	}

	count, err := repo.CountByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != int64(want) {
		t.Errorf("owner has %d deadlines, want exactly one seeded batch of %d", count, want)
	}
}

func TestEnsurePersonalized_ConcurrentFirstSessions(t *testing.T) {
	svc, repo, profiles := newTestService(t)
	ctx := context.Background()
	seedOwner(t, profiles, "owner-1", model.RoleFreelancer)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.EnsurePersonalized(ctx, "owner-1", model.RoleFreelancer, testNow)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	want := int64(len(catalog.Builtin().TemplatesFor(model.RoleFreelancer)))
	count, err := repo.CountByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != want {
		t.Errorf("concurrent first sessions produced %d deadlines, want %d", count, want)
	}
}

func TestEnsurePersonalized_IndependentOwners(t *testing.T) {
	svc, _, profiles := newTestService(t)
	ctx := context.Background()
	seedOwner(t, profiles, "owner-a", model.RoleStartup)
	seedOwner(t, profiles, "owner-b", "something_else")

	seededA, err := svc.EnsurePersonalized(ctx, "owner-a", model.RoleStartup, testNow)
	if err != nil {
		t.Fatalf("owner-a: %v", err)
	}
	seededB, err := svc.EnsurePersonalized(ctx, "owner-b", "something_else", testNow)
	if err != nil {
		t.Fatalf("owner-b: %v", err)
	}

	if len(seededA) <= len(seededB) {
		t.Errorf("startup owner got %d, unknown role owner got %d; unknown roles get baseline only",
			len(seededA), len(seededB))
	}
	if want := len(catalog.Builtin().Baseline); len(seededB) != want {
		t.Errorf("unknown role seeded %d deadlines, want baseline %d", len(seededB), want)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, repo, profiles := newTestService(t)
	ctx := context.Background()
	seedOwner(t, profiles, "owner-1", model.RoleStartup)

	tests := []struct {
		name  string
		owner string
		input DeadlineInput
		field string
	}{
		{"empty title", "owner-1", DeadlineInput{Title: "  ", DueAt: testNow}, "title"},
		{"zero due date", "owner-1", DeadlineInput{Title: "Trademark Renewal"}, "due_at"},
		{"recurring without pattern", "owner-1", DeadlineInput{Title: "X", DueAt: testNow, IsRecurring: true}, "recurrence_pattern"},
		{"recurring with bad pattern", "owner-1", DeadlineInput{Title: "X", DueAt: testNow, IsRecurring: true, RecurrencePattern: "weekly"}, "recurrence_pattern"},
		{"missing owner", "", DeadlineInput{Title: "X", DueAt: testNow}, "owner_id"},
		{"unknown owner", "owner-2", DeadlineInput{Title: "X", DueAt: testNow}, "owner_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.owner, tt.input)
			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Create = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("failed field = %q, want %q", ve.Field, tt.field)
			}
		})
	}

	count, err := repo.CountByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("rejected creates persisted %d deadlines", count)
	}
}

func TestCreate_Defaults(t *testing.T) {
	svc, _, profiles := newTestService(t)
	ctx := context.Background()
	seedOwner(t, profiles, "owner-1", model.RoleStartup)

	created, err := svc.Create(ctx, "owner-1", DeadlineInput{
		Title:           "  Trademark Renewal  ",
		DueAt:           testNow.AddDate(0, 1, 0),
		ReminderEnabled: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Title != "Trademark Renewal" {
		t.Errorf("title not trimmed: %q", created.Title)
	}
	if created.Category != model.CategoryCustom {
		t.Errorf("empty category must default to custom, got %q", created.Category)
	}
	if created.ID == "" {
		t.Error("created deadline must get an id")
	}
	if created.IsCompleted {
		t.Error("created deadline must start open")
	}
}

func TestCreate_UnrecognizedCategoryIsKept(t *testing.T) {
	svc, _, profiles := newTestService(t)
	ctx := context.Background()
	seedOwner(t, profiles, "owner-1", model.RoleStartup)

	created, err := svc.Create(ctx, "owner-1", DeadlineInput{
		Title:           "Env Clearance",
		DueAt:           testNow.AddDate(0, 1, 0),
		Category:        "environmental",
		ReminderEnabled: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Category != "environmental" {
		t.Errorf("literal category must persist, got %q", created.Category)
	}
	if created.DisplayCategory() != model.CategoryCustom {
		t.Errorf("unknown category must display as custom, got %q", created.DisplayCategory())
	}
}

func TestToggleComplete_RecurringGeneratesSuccessor(t *testing.T) {
	svc, repo, profiles := newTestService(t)
	ctx := context.Background()
	seedOwner(t, profiles, "owner-1", model.RoleStartup)

	created, err := svc.Create(ctx, "owner-1", DeadlineInput{
		Title:             "GST Return Filing",
		DueAt:             time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC),
		Category:          model.CategoryTax,
		IsRecurring:       true,
		RecurrencePattern: model.PatternMonthly,
		ReminderEnabled:   true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, next, err := svc.ToggleComplete(ctx, created.ID, testNow)
	if err != nil {
		t.Fatalf("ToggleComplete: %v", err)
	}
	if !updated.IsCompleted {
		t.Error("original must be marked completed")
	}
	if next == nil {
		t.Fatal("recurring completion must generate a successor")
	}
	if got := next.DueAt.Format("2006-01-02"); got != "2024-07-20" {
		t.Errorf("successor due %s, want 2024-07-20", got)
	}
	if next.IsCompleted {
		t.Error("successor must start open")
	}
	if next.Category != created.Category || next.RecurrencePattern != created.RecurrencePattern {
		t.Errorf("successor must copy category and pattern: %+v", next)
	}

	// Both records exist: the completed original stays as history.
	count, err := repo.CountByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("owner has %d deadlines, want original plus successor", count)
	}
}

func TestToggleComplete_NonRecurring(t *testing.T) {
	svc, repo, profiles := newTestService(t)
	ctx := context.Background()
	seedOwner(t, profiles, "owner-1", model.RoleStartup)

	created, err := svc.Create(ctx, "owner-1", DeadlineInput{
		Title:           "One-off filing",
		DueAt:           testNow.AddDate(0, 0, 3),
		ReminderEnabled: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, next, err := svc.ToggleComplete(ctx, created.ID, testNow)
	if err != nil {
		t.Fatalf("ToggleComplete: %v", err)
	}
	if !updated.IsCompleted {
		t.Error("deadline must be marked completed")
	}
	if next != nil {
		t.Errorf("non-recurring completion must not generate a successor, got %+v", next)
	}

	// Toggling again reopens it.
	updated, next, err = svc.ToggleComplete(ctx, created.ID, testNow)
	if err != nil {
		t.Fatalf("second ToggleComplete: %v", err)
	}
	if updated.IsCompleted {
		t.Error("second toggle must reopen the deadline")
	}
	if next != nil {
		t.Error("reopening must not generate a successor")
	}

	count, _ := repo.CountByOwner(ctx, "owner-1")
	if count != 1 {
		t.Errorf("owner has %d deadlines, want 1", count)
	}
}

func TestToggleComplete_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, _, err := svc.ToggleComplete(context.Background(), "missing", testNow); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("ToggleComplete on missing id = %v, want ErrNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	svc, _, profiles := newTestService(t)
	ctx := context.Background()
	seedOwner(t, profiles, "owner-1", model.RoleStartup)

	created, err := svc.Create(ctx, "owner-1", DeadlineInput{
		Title:           "Audit Report",
		DueAt:           testNow.AddDate(0, 1, 0),
		Category:        model.CategoryLegal,
		ReminderEnabled: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, DeadlineInput{
		Title:             "Audit Report Filing",
		DueAt:             testNow.AddDate(0, 2, 0),
		Category:          model.CategoryLegal,
		IsRecurring:       true,
		RecurrencePattern: model.PatternYearly,
		ReminderEnabled:   false,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Audit Report Filing" || !updated.IsRecurring || updated.ReminderEnabled {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.OwnerID != "owner-1" {
		t.Errorf("owner must never change, got %q", updated.OwnerID)
	}

	if _, err := svc.Update(ctx, created.ID, DeadlineInput{Title: "", DueAt: testNow}); !model.IsValidation(err) {
		t.Errorf("Update with empty title = %v, want ValidationError", err)
	}
	if _, err := svc.Update(ctx, "missing", DeadlineInput{Title: "X", DueAt: testNow}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Update on missing id = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	svc, repo, profiles := newTestService(t)
	ctx := context.Background()
	seedOwner(t, profiles, "owner-1", model.RoleStartup)

	created, err := svc.Create(ctx, "owner-1", DeadlineInput{
		Title:           "Temp filing",
		DueAt:           testNow.AddDate(0, 0, 5),
		ReminderEnabled: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}

	count, _ := repo.CountByOwner(ctx, "owner-1")
	if count != 0 {
		t.Errorf("owner has %d deadlines after delete, want 0", count)
	}
}

func TestListByOwner_OrderedByDueDate(t *testing.T) {
	svc, _, profiles := newTestService(t)
	ctx := context.Background()
	seedOwner(t, profiles, "owner-1", model.RoleStartup)

	dues := []time.Time{
		testNow.AddDate(0, 2, 0),
		testNow.AddDate(0, 0, 3),
		testNow.AddDate(0, 1, 0),
	}
	for i, due := range dues {
		if _, err := svc.Create(ctx, "owner-1", DeadlineInput{
			Title:           fmt.Sprintf("Filing %d", i),
			DueAt:           due,
			ReminderEnabled: true,
		}); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	deadlines, err := svc.ListByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(deadlines) != 3 {
		t.Fatalf("got %d deadlines, want 3", len(deadlines))
	}
	for i := 1; i < len(deadlines); i++ {
		if deadlines[i].DueAt.Before(deadlines[i-1].DueAt) {
			t.Errorf("deadlines not ordered by due date: %v after %v", deadlines[i].DueAt, deadlines[i-1].DueAt)
		}
	}
}
