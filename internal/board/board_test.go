package board

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/promanage/taskboard/internal/models"
)

func newTodo(status models.TodoStatus, priority models.Priority, dueDate string) *models.Todo {
	return &models.Todo{
		ID:       uuid.New(),
		Title:    "todo",
		Status:   status,
		Priority: priority,
		DueDate:  dueDate,
	}
}

func TestCategorizeBuckets(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 12, 12, 0, 0, 0, time.UTC)

	backlog := newTodo(models.TodoStatusBacklog, models.PriorityLow, "")
	open := newTodo(models.TodoStatusTodo, models.PriorityModerate, "")
	inProgress := newTodo(models.TodoStatusInProgress, models.PriorityHigh, "")
	done := newTodo(models.TodoStatusDone, models.PriorityLow, "")
	unknown := newTodo("archived", models.PriorityHigh, "")

	b, analytics := Categorize([]*models.Todo{backlog, open, inProgress, done, unknown}, Options{Now: now})

	if analytics != nil {
		t.Error("expected nil analytics when not requested")
	}
	if len(b.Backlog) != 1 || b.Backlog[0].ID != backlog.ID {
		t.Errorf("backlog bucket = %d items, want the backlog todo", len(b.Backlog))
	}
	if len(b.Todos) != 1 || b.Todos[0].ID != open.ID {
		t.Errorf("todos bucket = %d items, want the open todo", len(b.Todos))
	}
	if len(b.InProgress) != 1 || b.InProgress[0].ID != inProgress.ID {
		t.Errorf("inProgress bucket = %d items, want the in-Progress todo", len(b.InProgress))
	}
	if len(b.Done) != 1 || b.Done[0].ID != done.ID {
		t.Errorf("done bucket = %d items, want the done todo", len(b.Done))
	}

	total := len(b.Backlog) + len(b.Todos) + len(b.InProgress) + len(b.Done)
	if total != 4 {
		t.Errorf("bucketed %d todos, want 4 (unknown status lands nowhere)", total)
	}
}

func TestCategorizeStatusMatchIsExact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status models.TodoStatus
	}{
		{name: "wrong case in-progress", status: "in-progress"},
		{name: "wrong case In-Progress", status: "In-Progress"},
		{name: "trailing space", status: "done "},
		{name: "empty status", status: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, _ := Categorize([]*models.Todo{newTodo(tt.status, "", "")}, Options{Now: time.Now()})
			total := len(b.Backlog) + len(b.Todos) + len(b.InProgress) + len(b.Done)
			if total != 0 {
				t.Errorf("status %q landed in a bucket, want none", tt.status)
			}
		})
	}
}

func TestCategorizeBucketsAreNeverNil(t *testing.T) {
	t.Parallel()

	b, _ := Categorize(nil, Options{Now: time.Now()})
	if b.Backlog == nil || b.Todos == nil || b.InProgress == nil || b.Done == nil {
		t.Error("expected all buckets to be non-nil empty slices for an empty input")
	}
}

func TestCategorizePreservesInputOrder(t *testing.T) {
	t.Parallel()

	first := newTodo(models.TodoStatusTodo, "", "")
	second := newTodo(models.TodoStatusTodo, "", "")
	third := newTodo(models.TodoStatusTodo, "", "")

	b, _ := Categorize([]*models.Todo{first, second, third}, Options{Now: time.Now()})
	if len(b.Todos) != 3 {
		t.Fatalf("todos bucket = %d items, want 3", len(b.Todos))
	}
	if b.Todos[0].ID != first.ID || b.Todos[1].ID != second.ID || b.Todos[2].ID != third.ID {
		t.Error("bucket order does not match input order")
	}
}

func TestCategorizeWindowFiltering(t *testing.T) {
	t.Parallel()

	// Wednesday, 2026-08-12.
	now := time.Date(2026, time.August, 12, 12, 0, 0, 0, time.UTC)

	dueToday := newTodo(models.TodoStatusTodo, "", "2026-08-12")
	dueThisWeek := newTodo(models.TodoStatusTodo, "", "2026-08-14")
	dueNextMonth := newTodo(models.TodoStatusTodo, "", "2026-09-02")
	noDue := newTodo(models.TodoStatusTodo, "", "")
	badDue := newTodo(models.TodoStatusTodo, "", "whenever")
	all := []*models.Todo{dueToday, dueThisWeek, dueNextMonth, noDue, badDue}

	tests := []struct {
		name    string
		window  Window
		wantIDs []uuid.UUID
	}{
		{name: "no window passes everything through", window: "", wantIDs: []uuid.UUID{dueToday.ID, dueThisWeek.ID, dueNextMonth.ID, noDue.ID, badDue.ID}},
		{name: "today", window: WindowToday, wantIDs: []uuid.UUID{dueToday.ID}},
		{name: "thisWeek", window: WindowThisWeek, wantIDs: []uuid.UUID{dueToday.ID, dueThisWeek.ID}},
		{name: "thisMonth", window: WindowThisMonth, wantIDs: []uuid.UUID{dueToday.ID, dueThisWeek.ID}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, _ := Categorize(all, Options{Window: tt.window, Now: now})
			if len(b.Todos) != len(tt.wantIDs) {
				t.Fatalf("filtered bucket = %d items, want %d", len(b.Todos), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if b.Todos[i].ID != want {
					t.Errorf("filtered[%d] = %s, want %s", i, b.Todos[i].ID, want)
				}
			}
		})
	}
}

func TestCategorizeAnalytics(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 12, 12, 0, 0, 0, time.UTC)

	todos := []*models.Todo{
		newTodo(models.TodoStatusTodo, models.PriorityLow, "2026-08-12"),
		newTodo(models.TodoStatusDone, models.PriorityLow, ""),
		newTodo(models.TodoStatusBacklog, models.PriorityModerate, "not a date"),
		newTodo(models.TodoStatusInProgress, models.PriorityHigh, "2026-08-20"),
		newTodo("archived", "urgent", "2026-08-25"),
	}

	_, a := Categorize(todos, Options{Analytics: true, Now: now})
	if a == nil {
		t.Fatal("expected analytics when requested")
	}
	if a.PriorityCounts.Low != 2 || a.PriorityCounts.Moderate != 1 || a.PriorityCounts.High != 1 {
		t.Errorf("priorityCounts = %+v, want low=2 moderate=1 high=1", a.PriorityCounts)
	}
	// Unparseable due dates still count; only empty ones are excluded.
	if a.DueDateCount != 4 {
		t.Errorf("dueDateCount = %d, want 4", a.DueDateCount)
	}
}

func TestCategorizeAnalyticsCoverFilteredSet(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 12, 12, 0, 0, 0, time.UTC)

	todos := []*models.Todo{
		newTodo(models.TodoStatusTodo, models.PriorityHigh, "2026-08-12"),
		newTodo(models.TodoStatusTodo, models.PriorityHigh, "2026-09-01"),
	}

	_, a := Categorize(todos, Options{Window: WindowToday, Analytics: true, Now: now})
	if a.PriorityCounts.High != 1 {
		t.Errorf("analytics counted the unfiltered set: high = %d, want 1", a.PriorityCounts.High)
	}
	if a.DueDateCount != 1 {
		t.Errorf("dueDateCount = %d, want 1", a.DueDateCount)
	}
}

func TestCategorizeDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 12, 12, 0, 0, 0, time.UTC)
	in := []*models.Todo{
		newTodo(models.TodoStatusTodo, "", "2026-09-01"),
		newTodo(models.TodoStatusDone, "", "2026-08-12"),
	}
	before := make([]*models.Todo, len(in))
	copy(before, in)

	Categorize(in, Options{Window: WindowToday, Analytics: true, Now: now})

	for i := range in {
		if in[i] != before[i] {
			t.Fatal("input slice was reordered or replaced")
		}
	}
}
