package domain

import (
	"time"

	"github.com/google/uuid"
)

// DecisionEntry records one scoring decision with its sub-factors so a
// caller can audit why the engine ranked things the way it did.
type DecisionEntry struct {
	ID      uuid.UUID          `json:"id"`
	Stage   string             `json:"stage"`
	TaskID  string             `json:"task_id,omitempty"`
	Score   float64            `json:"score"`
	Factors map[string]float64 `json:"factors,omitempty"`
	Note    string             `json:"note,omitempty"`
	At      time.Time          `json:"at"`
}

// DecisionLog is an append-only accumulator local to a single scheduling
// run. It is created fresh per call and returned with the result; it is
// never shared between runs, so concurrent runs need no synchronization.
type DecisionLog struct {
	entries []DecisionEntry
}

// NewDecisionLog creates an empty log.
func NewDecisionLog() *DecisionLog {
	return &DecisionLog{entries: make([]DecisionEntry, 0, 16)}
}

// Record appends an entry, assigning an ID and timestamp if unset.
func (l *DecisionLog) Record(e DecisionEntry) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	l.entries = append(l.entries, e)
}

// Entries returns a copy of the recorded decisions.
func (l *DecisionLog) Entries() []DecisionEntry {
	out := make([]DecisionEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded decisions.
func (l *DecisionLog) Len() int {
	return len(l.entries)
}
