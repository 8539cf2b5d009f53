package domain

import "time"

// DecisionType classifies how a placement decision was reached.
type DecisionType string

const (
	DecisionOptimalPlacement   DecisionType = "OPTIMAL_PLACEMENT"
	DecisionConflictResolved   DecisionType = "CONFLICT_RESOLVED"
	DecisionPreferenceFlexed   DecisionType = "PREFERENCE_FLEXED"
	DecisionConstraintViolated DecisionType = "CONSTRAINT_VIOLATED"
	DecisionNoSlotFound        DecisionType = "NO_SLOT_FOUND"
)

// RankedSlot is a scored alternative window surfaced in an explanation.
type RankedSlot struct {
	TimeRange
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// Explanation is the rationale for one placement decision.
type Explanation struct {
	Decision           DecisionType `json:"decision_type"`
	Reason             string       `json:"reason"`
	Confidence         float64      `json:"confidence_score"`
	Tradeoffs          []string     `json:"tradeoffs,omitempty"`
	Alternatives       []RankedSlot `json:"alternatives_considered,omitempty"`
	ConstraintsApplied []string     `json:"constraints_applied,omitempty"`
	PreferencesHonored []string     `json:"preferences_honored,omitempty"`
	PreferencesFlexed  []string     `json:"preferences_flexed,omitempty"`
}

// SlotCandidate is a scored alternative window for single-event repair.
type SlotCandidate struct {
	TimeRange
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
	Method    string  `json:"method"`
}

// RunMetrics summarizes a scheduling run for observability.
type RunMetrics struct {
	TasksConsidered int             `json:"tasks_considered"`
	SlotsEvaluated  int             `json:"slots_evaluated"`
	Scheduled       int             `json:"scheduled"`
	Unscheduled     int             `json:"unscheduled"`
	Elapsed         time.Duration   `json:"elapsed"`
	Decisions       []DecisionEntry `json:"decisions,omitempty"`
}

// SchedulingResult is the outcome of a placement or repair run. Partial
// success (some tasks scheduled, some not) is a first-class outcome, not
// an error state; the engine never returns Go errors for it.
type SchedulingResult struct {
	Success              bool                   `json:"success"`
	Schedule             []ScheduleBlock        `json:"schedule"`
	Explanations         map[string]Explanation `json:"explanations,omitempty"`
	OverallExplanation   string                 `json:"overall_explanation"`
	Confidence           float64                `json:"confidence_score"`
	RequiresConfirmation bool                   `json:"requires_user_confirmation"`
	UnscheduledTasks     []string               `json:"unscheduled_tasks,omitempty"`
	Alternatives         []SlotCandidate        `json:"alternatives,omitempty"`
	Method               string                 `json:"method,omitempty"`
	Preview              bool                   `json:"preview,omitempty"`
	Metrics              RunMetrics             `json:"metrics"`
}
