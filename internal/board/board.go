// Package board implements the categorization and filter engine: it
// narrows a todo set by an optional due-date window, partitions it into
// the four workflow buckets, and optionally computes an analytics
// summary. Everything here is pure: the caller supplies the reference
// time, and no function touches the store.
package board

import (
	"time"

	"github.com/promanage/taskboard/internal/models"
)

// Options controls a single categorization pass.
type Options struct {
	// Window narrows the set by due date before bucketing. Empty means
	// no narrowing. At most one window is active per request.
	Window Window
	// Analytics requests a summary over the (possibly narrowed) set.
	Analytics bool
	// Now is the reference time for window arithmetic. Injected so the
	// engine stays deterministic under test.
	Now time.Time
}

// Board is the bucketed view of a todo set. Bucket membership is an
// exact match on status; a todo whose status is outside the four known
// stages appears in no bucket. Order within a bucket is the input order.
type Board struct {
	Backlog    []*models.Todo `json:"backlog"`
	Todos      []*models.Todo `json:"todos"`
	InProgress []*models.Todo `json:"inProgress"`
	Done       []*models.Todo `json:"done"`
}

// PriorityCounts counts todos per recognized priority. Unrecognized
// priority strings are counted nowhere.
type PriorityCounts struct {
	Low      int `json:"low"`
	Moderate int `json:"moderate"`
	High     int `json:"high"`
}

// Analytics summarizes the filtered set, independent of bucketing.
type Analytics struct {
	PriorityCounts PriorityCounts `json:"priorityCounts"`
	// DueDateCount counts todos carrying any non-empty due date,
	// parseable or not.
	DueDateCount int `json:"dueDateCount"`
}

// Categorize filters todos by opts.Window, partitions the result into
// buckets, and computes analytics when requested. The input slice is
// never mutated.
func Categorize(todos []*models.Todo, opts Options) (*Board, *Analytics) {
	filtered := todos
	if opts.Window != "" {
		filtered = make([]*models.Todo, 0, len(todos))
		for _, t := range todos {
			if dueDateInWindow(t.DueDate, opts.Window, opts.Now) {
				filtered = append(filtered, t)
			}
		}
	}

	b := &Board{
		Backlog:    []*models.Todo{},
		Todos:      []*models.Todo{},
		InProgress: []*models.Todo{},
		Done:       []*models.Todo{},
	}
	for _, t := range filtered {
		switch t.Status {
		case models.TodoStatusBacklog:
			b.Backlog = append(b.Backlog, t)
		case models.TodoStatusTodo:
			b.Todos = append(b.Todos, t)
		case models.TodoStatusInProgress:
			b.InProgress = append(b.InProgress, t)
		case models.TodoStatusDone:
			b.Done = append(b.Done, t)
		default:
			// Unknown workflow stage: excluded from every bucket, but
			// still part of the filtered set for analytics.
		}
	}

	if !opts.Analytics {
		return b, nil
	}

	a := &Analytics{}
	for _, t := range filtered {
		switch t.Priority {
		case models.PriorityLow:
			a.PriorityCounts.Low++
		case models.PriorityModerate:
			a.PriorityCounts.Moderate++
		case models.PriorityHigh:
			a.PriorityCounts.High++
		}
		if t.DueDate != "" {
			a.DueDateCount++
		}
	}
	return b, a
}
