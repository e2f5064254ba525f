package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/promanage/taskboard/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("todo_status", validateTodoStatus); err != nil {
		panic(fmt.Sprintf("failed to register todo_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("board_window", validateBoardWindow); err != nil {
		panic(fmt.Sprintf("failed to register board_window validator: %v", err))
	}
}

// validateTodoStatus validates that a string is a valid TodoStatus enum value
func validateTodoStatus(fl validator.FieldLevel) bool {
	return ValidateTodoStatus(fl.Field().String()) == nil
}

// validateBoardWindow validates that a string is a valid time-window filter value
func validateBoardWindow(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "today", "thisWeek", "thisMonth":
		return true
	default:
		return false
	}
}

// ValidateTodoStatus validates a TodoStatus string value. Status is a
// closed enumeration internally; the wire literals (including the
// "in-Progress" casing) are fixed by the client contract.
func ValidateTodoStatus(value string) error {
	switch models.TodoStatus(value) {
	case models.TodoStatusBacklog, models.TodoStatusTodo, models.TodoStatusInProgress, models.TodoStatusDone:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'backlog', 'todo', 'in-Progress', or 'done')", value)
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
