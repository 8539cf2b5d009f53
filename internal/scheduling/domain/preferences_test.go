package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBehavioralWeights_Clamping(t *testing.T) {
	weights := BehavioralWeights{
		"morning_preference": 1.7,
		"deep_work":          -0.3,
		"meeting_clustering": 0.6,
	}.Normalize()

	assert.Equal(t, 1.0, weights["morning_preference"])
	assert.Equal(t, 0.0, weights["deep_work"])
	assert.Equal(t, 0.6, weights["meeting_clustering"])
}

func TestBehavioralWeights_GetDefaultsToMidpoint(t *testing.T) {
	weights := BehavioralWeights{"focus": 0.9}
	assert.Equal(t, 0.9, weights.Get("focus"))
	assert.Equal(t, 0.5, weights.Get("unknown_category"))
}

func TestHardConstraints_WithinWorkHours(t *testing.T) {
	hard := DefaultPreferences().Hard

	inside := mustRange(t, "2026-09-01T10:00:00Z", "2026-09-01T11:00:00Z")
	assert.True(t, hard.WithinWorkHours(inside))

	early := mustRange(t, "2026-09-01T07:00:00Z", "2026-09-01T08:00:00Z")
	assert.False(t, hard.WithinWorkHours(early))

	spills := mustRange(t, "2026-09-01T16:30:00Z", "2026-09-01T17:30:00Z")
	assert.False(t, hard.WithinWorkHours(spills))

	endsAtBoundary := mustRange(t, "2026-09-01T16:00:00Z", "2026-09-01T17:00:00Z")
	assert.True(t, hard.WithinWorkHours(endsAtBoundary))
}

func TestHardConstraints_WithinWorkHours_MidnightCrossing(t *testing.T) {
	hard := DefaultPreferences().Hard

	// The wrapped end minute must not read as an early-morning end.
	crossing := mustRange(t, "2026-09-01T23:30:00Z", "2026-09-02T00:30:00Z")
	assert.False(t, hard.WithinWorkHours(crossing))

	multiDay := mustRange(t, "2026-09-01T09:00:00Z", "2026-09-02T10:00:00Z")
	assert.False(t, hard.WithinWorkHours(multiDay))

	allDay := HardConstraints{WorkDayStartMinute: 0, WorkDayEndMinute: 24 * 60}
	toMidnight := mustRange(t, "2026-09-01T22:00:00Z", "2026-09-02T00:00:00Z")
	assert.True(t, allDay.WithinWorkHours(toMidnight))
}

func TestSoftPreferences_InFocusBlock(t *testing.T) {
	soft := SoftPreferences{
		FocusBlocks: []ClockRange{{StartMinute: 9 * 60, EndMinute: 11 * 60}},
	}

	at := time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC)
	assert.True(t, soft.InFocusBlock(at))

	after := time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC)
	assert.False(t, soft.InFocusBlock(after))
}

func TestPreferences_NormalizeRepairsWorkWindow(t *testing.T) {
	prefs := Preferences{
		Hard:    HardConstraints{WorkDayStartMinute: 600, WorkDayEndMinute: 300},
		Weights: BehavioralWeights{"morning_preference": 2.0},
	}.Normalize()

	assert.Equal(t, 9*60, prefs.Hard.WorkDayStartMinute)
	assert.Equal(t, 17*60, prefs.Hard.WorkDayEndMinute)
	assert.Equal(t, 1.0, prefs.Weights["morning_preference"])
}
