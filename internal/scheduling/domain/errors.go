package domain

import "errors"

var (
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	ErrMissingTaskID    = errors.New("task id is required")
	ErrInvalidDuration  = errors.New("estimated minutes must be positive")
	ErrUnknownScope     = errors.New("unknown replanning scope")
)
