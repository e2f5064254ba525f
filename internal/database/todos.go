package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/promanage/taskboard/internal/models"
)

// TodoRepository handles todo database operations
type TodoRepository struct {
	db *DB
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(db *DB) *TodoRepository {
	return &TodoRepository{db: db}
}

const todoColumns = `id, title, priority, assigned_to, checklist, due_date, status, accessors, created_by, created_at, updated_at`

// Create creates a new todo
func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	query := `
		INSERT INTO todos (id, title, priority, assigned_to, checklist, due_date, status, accessors, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	checklistJSON, accessorsJSON, err := marshalTodoLists(todo)
	if err != nil {
		return err
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		todo.ID,
		todo.Title,
		todo.Priority,
		assignedToValue(todo),
		checklistJSON,
		todo.DueDate,
		todo.Status,
		accessorsJSON,
		todo.CreatedBy,
		now,
		now,
	).Scan(&todo.CreatedAt, &todo.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	return nil
}

// GetByID retrieves a todo by ID
func (r *TodoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`

	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return todo, nil
}

// FindVisible retrieves every todo the user may read: created by them,
// assigned to them, or carrying an accessor grant for them. The single
// predicate makes the result duplicate-free even when the user matches
// more than one role on the same todo. Rows come back in creation order
// so bucket ordering downstream is stable.
func (r *TodoRepository) FindVisible(ctx context.Context, userID uuid.UUID) ([]*models.Todo, error) {
	accessorMatch, err := json.Marshal([]models.Accessor{{AccessorID: userID}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal accessor predicate: %w", err)
	}

	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE created_by = $1 OR assigned_to = $1 OR accessors @> $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, accessorMatch)
	if err != nil {
		return nil, fmt.Errorf("failed to query visible todos: %w", err)
	}
	defer rows.Close()

	var todos []*models.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}

// Update updates an existing todo. created_by and created_at are never
// touched.
func (r *TodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	query := `
		UPDATE todos
		SET title = $2, priority = $3, assigned_to = $4, checklist = $5, due_date = $6, status = $7, accessors = $8, updated_at = $9
		WHERE id = $1
		RETURNING updated_at
	`

	checklistJSON, accessorsJSON, err := marshalTodoLists(todo)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, query,
		todo.ID,
		todo.Title,
		todo.Priority,
		assignedToValue(todo),
		checklistJSON,
		todo.DueDate,
		todo.Status,
		accessorsJSON,
		time.Now(),
	).Scan(&todo.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("todo %s: %w", todo.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	return nil
}

// Delete deletes a todo by ID
func (r *TodoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM todos WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}

	return nil
}

// GrantAccessor adds accessorID to every todo visible to userID that
// does not already carry it. Each todo is updated independently; there
// is no cross-todo transaction. On failure the count of todos already
// updated is returned with the error, and prior updates stay applied.
// Calling it again with the same arguments is safe: todos already
// holding the grant are skipped.
func (r *TodoRepository) GrantAccessor(ctx context.Context, userID, accessorID uuid.UUID) (int, error) {
	todos, err := r.FindVisible(ctx, userID)
	if err != nil {
		return 0, err
	}

	return grantAccessorFanOut(todos, accessorID, func(todo *models.Todo) error {
		return r.updateAccessors(ctx, todo)
	})
}

// grantAccessorFanOut walks the visible set, skips todos already
// holding the grant, and persists each added accessor independently.
// The first persistence failure stops the walk; the count reflects
// only updates that landed.
func grantAccessorFanOut(todos []*models.Todo, accessorID uuid.UUID, persist func(*models.Todo) error) (int, error) {
	granted := 0
	for _, todo := range todos {
		if !todo.AddAccessor(accessorID) {
			continue
		}
		if err := persist(todo); err != nil {
			return granted, fmt.Errorf("accessor fan-out stopped after %d update(s): %w", granted, err)
		}
		granted++
	}

	return granted, nil
}

// updateAccessors persists only the accessor list of a single todo.
func (r *TodoRepository) updateAccessors(ctx context.Context, todo *models.Todo) error {
	accessorsJSON, err := json.Marshal(todo.Accessors)
	if err != nil {
		return fmt.Errorf("failed to marshal accessors: %w", err)
	}

	query := `
		UPDATE todos
		SET accessors = $2, updated_at = $3
		WHERE id = $1
		RETURNING updated_at
	`

	err = r.db.QueryRowContext(ctx, query, todo.ID, accessorsJSON, time.Now()).Scan(&todo.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("todo %s: %w", todo.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update accessors: %w", err)
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (*models.Todo, error) {
	todo := &models.Todo{}
	var checklistJSON, accessorsJSON []byte
	var assignedTo uuid.NullUUID
	var dueDate sql.NullString

	err := s.Scan(
		&todo.ID,
		&todo.Title,
		&todo.Priority,
		&assignedTo,
		&checklistJSON,
		&dueDate,
		&todo.Status,
		&accessorsJSON,
		&todo.CreatedBy,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedTo.Valid {
		todo.AssignedTo = models.NewUserRef(assignedTo.UUID)
	}
	if dueDate.Valid {
		todo.DueDate = dueDate.String
	}
	if err := json.Unmarshal(checklistJSON, &todo.Checklist); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checklist: %w", err)
	}
	if err := json.Unmarshal(accessorsJSON, &todo.Accessors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accessors: %w", err)
	}

	return todo, nil
}

func marshalTodoLists(todo *models.Todo) (checklist, accessors []byte, err error) {
	if todo.Checklist == nil {
		todo.Checklist = []models.ChecklistItem{}
	}
	if todo.Accessors == nil {
		todo.Accessors = []models.Accessor{}
	}
	checklist, err = json.Marshal(todo.Checklist)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal checklist: %w", err)
	}
	accessors, err = json.Marshal(todo.Accessors)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal accessors: %w", err)
	}
	return checklist, accessors, nil
}

func assignedToValue(todo *models.Todo) any {
	if todo.AssignedTo == nil {
		return nil
	}
	return todo.AssignedTo.UserID
}
