package board

import (
	"fmt"
	"time"
)

// Window is a due-date narrowing applied before bucketing and analytics.
type Window string

const (
	// WindowToday keeps todos due on the current calendar day.
	WindowToday Window = "today"
	// WindowThisWeek keeps todos due between the most recent Sunday and
	// the following Saturday, both inclusive.
	WindowThisWeek Window = "thisWeek"
	// WindowThisMonth keeps todos due within the current calendar month.
	WindowThisMonth Window = "thisMonth"
)

// ParseWindow validates a filter query value. The empty string means no
// window.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case "", WindowToday, WindowThisWeek, WindowThisMonth:
		return Window(s), nil
	default:
		return "", fmt.Errorf("invalid filter: %s (must be 'today', 'thisWeek', or 'thisMonth')", s)
	}
}

// dueDateLayouts are the formats clients have been observed to send.
// Dates are stored as text, so parsing happens at filter time.
var dueDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// ParseDueDate parses a stored due date string.
func ParseDueDate(s string) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable due date: %q", s)
}

// dueDateInWindow reports whether the stored due date falls in the
// window relative to now. Missing or unparseable due dates never match.
func dueDateInWindow(dueDate string, w Window, now time.Time) bool {
	if dueDate == "" {
		return false
	}
	due, err := ParseDueDate(dueDate)
	if err != nil {
		return false
	}

	today := truncateToDay(now)
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())

	switch w {
	case WindowToday:
		return dueDay.Equal(today)
	case WindowThisWeek:
		// Week runs Sunday through Saturday around now.
		weekStart := today.AddDate(0, 0, -int(today.Weekday()))
		weekEnd := weekStart.AddDate(0, 0, 7)
		return !dueDay.Before(weekStart) && dueDay.Before(weekEnd)
	case WindowThisMonth:
		return due.Year() == now.Year() && due.Month() == now.Month()
	default:
		return false
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
