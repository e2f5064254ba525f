package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/promanage/taskboard/internal/models"
)

// UserActivityRepository handles user activity database operations
type UserActivityRepository struct {
	db *DB
}

// NewUserActivityRepository creates a new user activity repository
func NewUserActivityRepository(db *DB) *UserActivityRepository {
	return &UserActivityRepository{db: db}
}

// GetByUserID retrieves user activity by user ID
func (r *UserActivityRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserActivity, error) {
	activity := &models.UserActivity{}

	query := `
		SELECT user_id, last_event, last_event_at, event_count, created_at, updated_at
		FROM user_activity
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&activity.UserID,
		&activity.LastEvent,
		&activity.LastEventAt,
		&activity.EventCount,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("activity for user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user activity: %w", err)
	}

	return activity, nil
}

// RecordEvent upserts the user's activity row, stamping the event name
// and time and bumping the counter.
func (r *UserActivityRepository) RecordEvent(ctx context.Context, userID uuid.UUID, event string, at time.Time) error {
	query := `
		INSERT INTO user_activity (user_id, last_event, last_event_at, event_count, created_at, updated_at)
		VALUES ($1, $2, $3, 1, $4, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET last_event = EXCLUDED.last_event,
		    last_event_at = EXCLUDED.last_event_at,
		    event_count = user_activity.event_count + 1,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, userID, event, at, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record activity event: %w", err)
	}

	return nil
}

// TouchLastSeen stamps a lightweight "seen" event without bumping the
// event counter, used by the request middleware.
func (r *UserActivityRepository) TouchLastSeen(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO user_activity (user_id, last_event, last_event_at, event_count, created_at, updated_at)
		VALUES ($1, 'seen', $2, 0, $2, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET last_event_at = EXCLUDED.last_event_at,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to touch last seen: %w", err)
	}

	return nil
}
