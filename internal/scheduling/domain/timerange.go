package domain

import "time"

// TimeRange represents a time period with start and end.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange creates a validated time range.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// Overlaps checks if two time ranges overlap.
func (t TimeRange) Overlaps(other TimeRange) bool {
	return t.Start.Before(other.End) && other.Start.Before(t.End)
}

// Duration returns the duration of the time range.
func (t TimeRange) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// Contains checks if a point in time falls within the range.
func (t TimeRange) Contains(at time.Time) bool {
	return !at.Before(t.Start) && at.Before(t.End)
}

// Gap returns the distance between two non-overlapping ranges.
// Overlapping ranges have a gap of zero.
func (t TimeRange) Gap(other TimeRange) time.Duration {
	if t.Overlaps(other) {
		return 0
	}
	if t.End.Before(other.Start) || t.End.Equal(other.Start) {
		return other.Start.Sub(t.End)
	}
	return t.Start.Sub(other.End)
}

// IsValid reports whether the range is well-formed.
func (t TimeRange) IsValid() bool {
	return t.End.After(t.Start)
}

// SubtractWindow removes an occupied range from a set of free windows,
// returning a new slice. The input is never mutated so concurrent
// scheduling runs can share availability snapshots.
func SubtractWindow(windows []TimeRange, used TimeRange) []TimeRange {
	out := make([]TimeRange, 0, len(windows)+1)
	for _, w := range windows {
		if !w.Overlaps(used) {
			out = append(out, w)
			continue
		}
		if w.Start.Before(used.Start) {
			out = append(out, TimeRange{Start: w.Start, End: used.Start})
		}
		if used.End.Before(w.End) {
			out = append(out, TimeRange{Start: used.End, End: w.End})
		}
	}
	return out
}
