package models

import (
	"time"

	"github.com/google/uuid"
)

// TodoStatus represents the workflow stage of a todo.
type TodoStatus string

// Workflow stages. The "in-Progress" casing is the wire contract the
// existing clients depend on, so it is preserved as-is.
const (
	TodoStatusBacklog    TodoStatus = "backlog"
	TodoStatusTodo       TodoStatus = "todo"
	TodoStatusInProgress TodoStatus = "in-Progress"
	TodoStatusDone       TodoStatus = "done"
)

// Priority represents how urgent a todo is. Stored as a plain string;
// analytics only counts the three known values.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityModerate Priority = "moderate"
	PriorityHigh     Priority = "high"
)

// ChecklistItem is a sub-entry within a todo. Items get a server-assigned
// ID at creation time so toggling is stable across edits.
type ChecklistItem struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Checked     bool      `json:"checked"`
}

// Accessor is a user granted read access to a todo beyond the creator
// and assignee.
type Accessor struct {
	AccessorID uuid.UUID `json:"accessorId"`
}

// Todo is the unit of work.
type Todo struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	Priority   Priority        `json:"priority"`
	AssignedTo *UserRef        `json:"assignedTo,omitempty"`
	Checklist  []ChecklistItem `json:"checklist"`
	DueDate    string          `json:"dueDate,omitempty"`
	Status     TodoStatus      `json:"status"`
	Accessors  []Accessor      `json:"accessors"`
	CreatedBy  uuid.UUID       `json:"createdBy"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// VisibleTo reports whether userID may read this todo: the user created
// it, is assigned to it, or holds an accessor grant. A user may match
// several roles at once; the result is still a single membership test.
func (t *Todo) VisibleTo(userID uuid.UUID) bool {
	if t.CreatedBy == userID {
		return true
	}
	if t.AssignedTo.Refers(userID) {
		return true
	}
	return t.HasAccessor(userID)
}

// HasAccessor reports whether accessorID already holds a grant.
func (t *Todo) HasAccessor(accessorID uuid.UUID) bool {
	for _, a := range t.Accessors {
		if a.AccessorID == accessorID {
			return true
		}
	}
	return false
}

// AddAccessor appends a grant for accessorID unless one already exists.
// It reports whether the accessor list changed.
func (t *Todo) AddAccessor(accessorID uuid.UUID) bool {
	if t.HasAccessor(accessorID) {
		return false
	}
	t.Accessors = append(t.Accessors, Accessor{AccessorID: accessorID})
	return true
}

// ToggleChecklistItem flips the checked flag of the checklist item with
// the given ID. It reports whether the item was found.
func (t *Todo) ToggleChecklistItem(itemID uuid.UUID) bool {
	for i := range t.Checklist {
		if t.Checklist[i].ID == itemID {
			t.Checklist[i].Checked = !t.Checklist[i].Checked
			return true
		}
	}
	return false
}
