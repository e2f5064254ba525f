package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType names the todo mutation that produced an activity event.
type JobType string

const (
	JobTypeTodoCreated       JobType = "todo_created"
	JobTypeTodoStatusChanged JobType = "todo_status_changed"
	JobTypeChecklistToggled  JobType = "todo_checklist_toggled"
	JobTypeTodoEdited        JobType = "todo_edited"
	JobTypeTodoDeleted       JobType = "todo_deleted"
	JobTypeAccessorGranted   JobType = "accessor_granted"
)

// Job is an activity event published on a todo mutation and consumed by
// the worker.
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	UserID     uuid.UUID      `json:"user_id"`
	TodoID     *uuid.UUID     `json:"todo_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, userID uuid.UUID, todoID *uuid.UUID) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		TodoID:     todoID,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
