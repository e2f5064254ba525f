package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/promanage/taskboard/internal/models"
)

// TodoStore defines the todo persistence operations the handlers use.
// This interface enables better testability by allowing mock
// implementations.
type TodoStore interface {
	Create(ctx context.Context, todo *models.Todo) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Todo, error)
	FindVisible(ctx context.Context, userID uuid.UUID) ([]*models.Todo, error)
	Update(ctx context.Context, todo *models.Todo) error
	Delete(ctx context.Context, id uuid.UUID) error
	GrantAccessor(ctx context.Context, userID, accessorID uuid.UUID) (int, error)
}

// UserStore defines the user persistence operations the handlers and
// auth middleware use.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

// UserActivityStore defines the activity operations used by the worker
// and the activity middleware.
type UserActivityStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserActivity, error)
	RecordEvent(ctx context.Context, userID uuid.UUID, event string, at time.Time) error
	TouchLastSeen(ctx context.Context, userID uuid.UUID) error
}

// Ensure concrete types implement the interfaces
var (
	_ TodoStore         = (*TodoRepository)(nil)
	_ UserStore         = (*UserRepository)(nil)
	_ UserActivityStore = (*UserActivityRepository)(nil)
)
