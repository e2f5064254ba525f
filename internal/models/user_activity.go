package models

import (
	"time"

	"github.com/google/uuid"
)

// UserActivity tracks what a user last did, fed by the worker from the
// activity event queue and by the activity middleware for reads.
type UserActivity struct {
	UserID      uuid.UUID `json:"user_id"`
	LastEvent   string    `json:"last_event"`
	LastEventAt time.Time `json:"last_event_at"`
	EventCount  int64     `json:"event_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
