package domain

import "time"

// Behavioral weight keys learned from user activity.
const (
	WeightMorningPreference   = "morning_preference"
	WeightAfternoonPreference = "afternoon_preference"
	WeightMeetingClustering   = "meeting_clustering"
)

// defaultWeight is used for any category without a learned weight.
const defaultWeight = 0.5

// BehavioralWeights maps preference categories to learned strengths in [0,1].
type BehavioralWeights map[string]float64

// Get returns the weight for a category, defaulting to 0.5 when unknown.
func (w BehavioralWeights) Get(category string) float64 {
	if v, ok := w[category]; ok {
		return clamp01(v)
	}
	return defaultWeight
}

// Normalize returns a copy with every weight clamped to [0,1].
func (w BehavioralWeights) Normalize() BehavioralWeights {
	out := make(BehavioralWeights, len(w))
	for k, v := range w {
		out[k] = clamp01(v)
	}
	return out
}

// ClockRange is a daily recurring window in minutes from midnight,
// independent of date (e.g., a 09:00-11:00 focus block).
type ClockRange struct {
	StartMinute int `json:"start_minute" yaml:"start_minute"`
	EndMinute   int `json:"end_minute" yaml:"end_minute"`
}

// ContainsClock checks whether a point in time falls inside the daily window.
func (c ClockRange) ContainsClock(at time.Time) bool {
	minute := at.Hour()*60 + at.Minute()
	return minute >= c.StartMinute && minute < c.EndMinute
}

// HardConstraints are rules that mark a placement CONSTRAINT_VIOLATED
// when breached.
type HardConstraints struct {
	WorkDayStartMinute int         `json:"work_day_start_minute" yaml:"work_day_start_minute"`
	WorkDayEndMinute   int         `json:"work_day_end_minute" yaml:"work_day_end_minute"`
	BlockedTimes       []TimeRange `json:"blocked_times,omitempty" yaml:"blocked_times,omitempty"`
	MaxMeetingsPerDay  int         `json:"max_meetings_per_day" yaml:"max_meetings_per_day"`
	MinBreakMinutes    int         `json:"min_break_minutes" yaml:"min_break_minutes"`
}

// WithinWorkHours checks whether a range falls inside the working-hours
// window of its own day.
func (h HardConstraints) WithinWorkHours(r TimeRange) bool {
	startMinute := r.Start.Hour()*60 + r.Start.Minute()
	endMinute := r.End.Hour()*60 + r.End.Minute()
	if endMinute == 0 { // midnight end means the range runs to end of day
		endMinute = 24 * 60
	}
	// A range that leaves its own calendar day (crosses midnight or spans
	// more than a day) can never sit inside one working day.
	if endMinute <= startMinute || r.Duration() > 24*time.Hour {
		return false
	}
	return startMinute >= h.WorkDayStartMinute && endMinute <= h.WorkDayEndMinute
}

// OverlapsBlockedTime checks whether a range touches any blocked period.
func (h HardConstraints) OverlapsBlockedTime(r TimeRange) bool {
	for _, blocked := range h.BlockedTimes {
		if r.Overlaps(blocked) {
			return true
		}
	}
	return false
}

// SoftPreferences are rules that may be flexed with a recorded trade-off.
type SoftPreferences struct {
	FocusBlocks     []ClockRange `json:"focus_blocks,omitempty" yaml:"focus_blocks,omitempty"`
	PreferMorning   bool         `json:"prefer_morning" yaml:"prefer_morning"`
	PreferAfternoon bool         `json:"prefer_afternoon" yaml:"prefer_afternoon"`
}

// InFocusBlock checks whether a point in time falls inside any focus block.
func (s SoftPreferences) InFocusBlock(at time.Time) bool {
	for _, fb := range s.FocusBlocks {
		if fb.ContainsClock(at) {
			return true
		}
	}
	return false
}

// Preferences bundles the full scheduling policy for a user.
type Preferences struct {
	Hard    HardConstraints   `json:"hard_constraints" yaml:"hard_constraints"`
	Soft    SoftPreferences   `json:"soft_preferences" yaml:"soft_preferences"`
	Weights BehavioralWeights `json:"behavioral_weights" yaml:"behavioral_weights"`
}

// DefaultPreferences returns a 9-to-5 policy with neutral weights.
func DefaultPreferences() Preferences {
	return Preferences{
		Hard: HardConstraints{
			WorkDayStartMinute: 9 * 60,
			WorkDayEndMinute:   17 * 60,
			MaxMeetingsPerDay:  6,
			MinBreakMinutes:    15,
		},
		Weights: BehavioralWeights{},
	}
}

// Normalize returns a copy with behavioral weights clamped to [0,1].
// Validation happens once at ingestion, not inside scoring code.
func (p Preferences) Normalize() Preferences {
	p.Weights = p.Weights.Normalize()
	if p.Hard.WorkDayEndMinute <= p.Hard.WorkDayStartMinute {
		p.Hard.WorkDayStartMinute = 9 * 60
		p.Hard.WorkDayEndMinute = 17 * 60
	}
	return p
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
