package domain

// BusyEvent is an external occupancy on the calendar. Hard events are
// immovable (meetings, classes); soft events may be shifted during
// replanning or fallback repair.
type BusyEvent struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Title  string `json:"title"`
	TimeRange
	Hard bool `json:"hard"`
}

// ScheduleBlock is a committed or proposed placement of a task.
type ScheduleBlock struct {
	TaskID string `json:"task_id"`
	Title  string `json:"title"`
	Type   string `json:"type,omitempty"`
	TimeRange
	UtilityScore          float64 `json:"utility_score"`
	CompletionProbability float64 `json:"estimated_completion_probability"`
}

// BlockOccupancy returns the time ranges covered by a set of blocks.
func BlockOccupancy(blocks []ScheduleBlock) []TimeRange {
	ranges := make([]TimeRange, 0, len(blocks))
	for _, b := range blocks {
		ranges = append(ranges, b.TimeRange)
	}
	return ranges
}
