package domain

import (
	"strings"
	"time"
)

// Priority represents task urgency.
type Priority string

const (
	PriorityUrgent Priority = "URGENT"
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// ParsePriority maps a raw priority string to a Priority.
// Unrecognized values fall back to MEDIUM rather than failing.
func ParsePriority(raw string) Priority {
	switch Priority(strings.ToUpper(strings.TrimSpace(raw))) {
	case PriorityUrgent:
		return PriorityUrgent
	case PriorityHigh:
		return PriorityHigh
	case PriorityMedium:
		return PriorityMedium
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Weight returns the numeric priority weight (URGENT=4 .. LOW=1).
func (p Priority) Weight() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// Raise returns the next-higher priority, capped at URGENT.
func (p Priority) Raise() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityUrgent
	}
}

// Task is a unit of work to place on the calendar.
type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Type             string     `json:"type"`
	Priority         Priority   `json:"priority"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	EstimatedMinutes int        `json:"estimated_minutes"`
}

// Duration returns the task's estimated duration.
func (t Task) Duration() time.Duration {
	return time.Duration(t.EstimatedMinutes) * time.Minute
}

// Validate checks the task's input contract. Invalid tasks are skipped
// into the unscheduled list by the engine, never aborted on.
func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingTaskID
	}
	if t.EstimatedMinutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}
