package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/promanage/taskboard/internal/board"
	"github.com/promanage/taskboard/internal/database"
	"github.com/promanage/taskboard/internal/models"
	"github.com/promanage/taskboard/internal/queue"
	"github.com/promanage/taskboard/internal/request"
	"github.com/promanage/taskboard/internal/validation"
	"go.uber.org/zap"
)

// TodoHandler handles todo-related requests
type TodoHandler struct {
	todoRepo database.TodoStore
	jobQueue queue.JobQueue
	logger   *zap.Logger
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todoRepo database.TodoStore, jobQueue queue.JobQueue, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{todoRepo: todoRepo, jobQueue: jobQueue, logger: logger}
}

// RegisterRoutes registers todo routes on the given router.
// The router should already have the /todos prefix (e.g., from
// apiRouter.PathPrefix("/todos")). Fixed paths are registered before
// the /{userId} catch-all so mux matches them first.
func (h *TodoHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.CreateTodo).Methods("POST")
	r.HandleFunc("", h.EditTodo).Methods("PATCH")
	r.HandleFunc("", h.DeleteTodo).Methods("DELETE")
	r.HandleFunc("/status", h.UpdateStatus).Methods("PATCH")
	r.HandleFunc("/checklist", h.ToggleChecklist).Methods("PATCH")
	r.HandleFunc("/accessors/{userId}", h.GrantAccessors).Methods("PATCH")
	r.HandleFunc("/{userId}", h.GetBoard).Methods("GET")
}

const (
	// MaxTitleLength is the maximum length for a todo title
	MaxTitleLength = 500
	// MaxChecklistItems is the maximum number of checklist items per todo
	MaxChecklistItems = 100
)

// ChecklistItemRequest is a checklist entry as sent by clients. New
// items arrive without an ID; the server assigns one.
type ChecklistItemRequest struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	Description string     `json:"description" validate:"max=1000"`
	Checked     bool       `json:"checked"`
}

// CreateTodoRequest represents a create todo request
type CreateTodoRequest struct {
	Title      string                 `json:"title" validate:"required,min=1"`
	Priority   string                 `json:"priority"`
	AssignedTo *models.UserRef        `json:"assignedTo,omitempty"`
	Checklist  []ChecklistItemRequest `json:"checklist"`
	DueDate    string                 `json:"dueDate"`
	Status     string                 `json:"status" validate:"omitempty,todo_status"`
	CreatedBy  uuid.UUID              `json:"createdBy" validate:"required"`
}

// EditTodoRequest represents a full-field edit request
type EditTodoRequest struct {
	TodoID     uuid.UUID              `json:"todoId" validate:"required"`
	Title      string                 `json:"title" validate:"required,min=1"`
	Priority   string                 `json:"priority"`
	AssignedTo *models.UserRef        `json:"assignedTo,omitempty"`
	Checklist  []ChecklistItemRequest `json:"checklist"`
	DueDate    string                 `json:"dueDate"`
}

// UpdateStatusRequest moves a todo to another workflow stage
type UpdateStatusRequest struct {
	TodoID uuid.UUID `json:"todoId" validate:"required"`
	Status string    `json:"status" validate:"required,todo_status"`
}

// ToggleChecklistRequest flips one checklist item
type ToggleChecklistRequest struct {
	TodoID      uuid.UUID `json:"todoId" validate:"required"`
	ChecklistID uuid.UUID `json:"checklistId" validate:"required"`
}

// DeleteTodoRequest identifies the todo to delete
type DeleteTodoRequest struct {
	TodoID uuid.UUID `json:"todoId" validate:"required"`
}

// GrantAccessorsRequest adds an accessor across a user's visible todos
type GrantAccessorsRequest struct {
	AccessorID uuid.UUID `json:"accessorId" validate:"required"`
}

// BoardResponse is the bucketed board plus optional analytics
type BoardResponse struct {
	*board.Board
	Analytics *board.Analytics `json:"analytics,omitempty"`
}

// GetBoard returns the categorized board of all todos visible to the
// user in the path: created by them, assigned to them, or shared with
// them as an accessor. Supports ?filter=today|thisWeek|thisMonth and
// ?analytics=true.
func (h *TodoHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	userID, err := uuid.Parse(vars["userId"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid user ID")
		return
	}
	if userID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Cannot view another user's board")
		return
	}

	window, err := board.ParseWindow(r.URL.Query().Get("filter"))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	wantAnalytics := r.URL.Query().Get("analytics") == "true"

	ctx := r.Context()
	todos, err := h.todoRepo.FindVisible(ctx, userID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve todos")
		return
	}

	b, analytics := board.Categorize(todos, board.Options{
		Window:    window,
		Analytics: wantAnalytics,
		Now:       time.Now(),
	})

	respondJSON(w, http.StatusOK, BoardResponse{Board: b, Analytics: analytics})
}

// CreateTodo creates a new todo
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateTodoRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}
	if req.CreatedBy != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "createdBy must be the authenticated user")
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and cannot be empty after sanitization")
		return
	}
	if len(req.Title) > MaxTitleLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Title exceeds maximum length of %d characters", MaxTitleLength))
		return
	}
	if len(req.Checklist) > MaxChecklistItems {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Checklist exceeds maximum of %d items", MaxChecklistItems))
		return
	}

	status := models.TodoStatus(req.Status)
	if status == "" {
		status = models.TodoStatusTodo
	}

	todo := &models.Todo{
		ID:         uuid.New(),
		Title:      req.Title,
		Priority:   models.Priority(req.Priority),
		AssignedTo: req.AssignedTo,
		Checklist:  buildChecklist(req.Checklist),
		DueDate:    req.DueDate,
		Status:     status,
		Accessors:  []models.Accessor{},
		CreatedBy:  req.CreatedBy,
	}

	ctx := r.Context()
	if err := h.todoRepo.Create(ctx, todo); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create todo")
		return
	}

	h.publishEvent(r, queue.JobTypeTodoCreated, user.ID, todo.ID)
	respondJSON(w, http.StatusCreated, todo)
}

// UpdateStatus moves a todo to another workflow stage
func (h *TodoHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req UpdateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	ctx := r.Context()
	todo, ok := h.loadVisibleTodo(w, r, req.TodoID, user.ID)
	if !ok {
		return
	}

	todo.Status = models.TodoStatus(req.Status)
	if err := h.todoRepo.Update(ctx, todo); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update todo")
		return
	}

	h.publishEvent(r, queue.JobTypeTodoStatusChanged, user.ID, todo.ID)
	respondJSON(w, http.StatusOK, todo)
}

// ToggleChecklist flips the checked flag on one checklist item
func (h *TodoHandler) ToggleChecklist(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req ToggleChecklistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	ctx := r.Context()
	todo, ok := h.loadVisibleTodo(w, r, req.TodoID, user.ID)
	if !ok {
		return
	}

	if !todo.ToggleChecklistItem(req.ChecklistID) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Checklist item not found")
		return
	}
	if err := h.todoRepo.Update(ctx, todo); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update todo")
		return
	}

	h.publishEvent(r, queue.JobTypeChecklistToggled, user.ID, todo.ID)
	respondJSON(w, http.StatusOK, todo)
}

// EditTodo replaces the editable fields of a todo. Status moves through
// UpdateStatus; createdBy and createdAt never change.
func (h *TodoHandler) EditTodo(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req EditTodoRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and cannot be empty after sanitization")
		return
	}
	if len(req.Title) > MaxTitleLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Title exceeds maximum length of %d characters", MaxTitleLength))
		return
	}
	if len(req.Checklist) > MaxChecklistItems {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Checklist exceeds maximum of %d items", MaxChecklistItems))
		return
	}

	ctx := r.Context()
	todo, ok := h.loadVisibleTodo(w, r, req.TodoID, user.ID)
	if !ok {
		return
	}

	todo.Title = req.Title
	todo.Priority = models.Priority(req.Priority)
	todo.AssignedTo = req.AssignedTo
	todo.Checklist = buildChecklist(req.Checklist)
	todo.DueDate = req.DueDate

	if err := h.todoRepo.Update(ctx, todo); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update todo")
		return
	}

	h.publishEvent(r, queue.JobTypeTodoEdited, user.ID, todo.ID)
	respondJSON(w, http.StatusOK, todo)
}

// DeleteTodo deletes a todo
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req DeleteTodoRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	ctx := r.Context()
	todo, ok := h.loadVisibleTodo(w, r, req.TodoID, user.ID)
	if !ok {
		return
	}

	if err := h.todoRepo.Delete(ctx, todo.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Todo not found")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete todo")
		return
	}

	h.publishEvent(r, queue.JobTypeTodoDeleted, user.ID, todo.ID)
	w.WriteHeader(http.StatusNoContent)
}

// GrantAccessors grants the accessor read access to every todo visible
// to the user in the path. Each todo is updated independently; todos
// that already hold the accessor are skipped. On a mid-fan-out failure
// the applied count so far is still reported in the error path.
func (h *TodoHandler) GrantAccessors(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	userID, err := uuid.Parse(vars["userId"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid user ID")
		return
	}
	if userID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Cannot share another user's todos")
		return
	}

	var req GrantAccessorsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	ctx := r.Context()
	granted, err := h.todoRepo.GrantAccessor(ctx, userID, req.AccessorID)
	if err != nil {
		h.logger.Error("accessor_grant_failed",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("accessor_id", req.AccessorID.String()),
			zap.Int("granted_before_failure", granted),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error",
			fmt.Sprintf("Sharing stopped after %d todo(s)", granted))
		return
	}

	h.publishEvent(r, queue.JobTypeAccessorGranted, user.ID, uuid.Nil)
	respondJSON(w, http.StatusOK, map[string]any{"granted": granted})
}

// loadVisibleTodo fetches a todo and enforces the visibility rule. It
// writes the error response itself and reports success via ok.
func (h *TodoHandler) loadVisibleTodo(w http.ResponseWriter, r *http.Request, todoID, userID uuid.UUID) (*models.Todo, bool) {
	todo, err := h.todoRepo.GetByID(r.Context(), todoID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Todo not found")
			return nil, false
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve todo")
		return nil, false
	}
	if !todo.VisibleTo(userID) {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Todo is not visible to user")
		return nil, false
	}
	return todo, true
}

// buildChecklist converts client checklist entries into model items,
// assigning IDs to items that arrive without one.
func buildChecklist(items []ChecklistItemRequest) []models.ChecklistItem {
	out := make([]models.ChecklistItem, 0, len(items))
	for _, item := range items {
		id := uuid.New()
		if item.ID != nil && *item.ID != uuid.Nil {
			id = *item.ID
		}
		out = append(out, models.ChecklistItem{
			ID:          id,
			Description: validation.SanitizeText(item.Description),
			Checked:     item.Checked,
		})
	}
	return out
}

// publishEvent enqueues an activity event. Failures are logged and
// never fail the request.
func (h *TodoHandler) publishEvent(r *http.Request, jobType queue.JobType, userID, todoID uuid.UUID) {
	if h.jobQueue == nil {
		return
	}
	var todoRef *uuid.UUID
	if todoID != uuid.Nil {
		todoRef = &todoID
	}
	job := queue.NewJob(jobType, userID, todoRef)
	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		h.logger.Warn("activity_event_enqueue_failed",
			zap.Error(err),
			zap.String("job_type", string(jobType)),
			zap.String("user_id", userID.String()),
		)
	}
}

// decodeBody decodes a JSON request body, writing the error response on
// failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return false
	}
	return true
}

// validateStruct runs the shared validator, writing the error response
// on failure.
func validateStruct(w http.ResponseWriter, req any) bool {
	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return false
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return false
	}
	return true
}
