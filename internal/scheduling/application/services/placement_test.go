package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyonthewallai/pulseplan/internal/scheduling/domain"
)

func testRange(t *testing.T, start, end string) domain.TimeRange {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	require.NoError(t, err)
	e, err := time.Parse(time.RFC3339, end)
	require.NoError(t, err)
	return domain.TimeRange{Start: s, End: e}
}

func taskFixture(id string, priority domain.Priority, minutes int) domain.Task {
	return domain.Task{
		ID:               id,
		Title:            "Task " + id,
		Type:             "focus",
		Priority:         priority,
		EstimatedMinutes: minutes,
	}
}

func TestPlacementEngine_ScheduleTasks_FillsOneBlock(t *testing.T) {
	engine := NewPlacementEngine(DefaultPlacementConfig(), nil)
	tasks := []domain.Task{
		taskFixture("urgent", domain.PriorityUrgent, 60),
		taskFixture("low", domain.PriorityLow, 30),
		taskFixture("medium", domain.PriorityMedium, 90),
	}
	availability := []domain.TimeRange{
		testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T13:00:00Z"),
	}

	result := engine.ScheduleTasks(context.Background(), tasks, availability, domain.DefaultPreferences(), false)

	require.True(t, result.Success)
	assert.Len(t, result.Schedule, 3)
	assert.Empty(t, result.UnscheduledTasks)
	assert.Greater(t, result.Confidence, 0.0)

	// The urgent task wins the earliest slot.
	earliest := result.Schedule[0]
	for _, block := range result.Schedule[1:] {
		assert.False(t, block.Start.Before(earliest.Start))
	}
	assert.Equal(t, "urgent", earliest.TaskID)
}

func TestPlacementEngine_EveryTaskIsAccountedFor(t *testing.T) {
	engine := NewPlacementEngine(DefaultPlacementConfig(), nil)
	tasks := []domain.Task{
		taskFixture("a", domain.PriorityHigh, 120),
		taskFixture("b", domain.PriorityMedium, 120),
		taskFixture("c", domain.PriorityLow, 120),
	}
	// Only room for one two-hour task.
	availability := []domain.TimeRange{
		testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T11:00:00Z"),
	}

	result := engine.ScheduleTasks(context.Background(), tasks, availability, domain.DefaultPreferences(), false)

	assert.Equal(t, len(tasks), len(result.Schedule)+len(result.UnscheduledTasks))
	assert.Len(t, result.Schedule, 1)
	assert.Len(t, result.UnscheduledTasks, 2)
	for _, id := range result.UnscheduledTasks {
		assert.Equal(t, domain.DecisionNoSlotFound, result.Explanations[id].Decision)
	}
}

func TestPlacementEngine_ConfidenceBounds(t *testing.T) {
	engine := NewPlacementEngine(DefaultPlacementConfig(), nil)

	empty := engine.ScheduleTasks(context.Background(),
		[]domain.Task{taskFixture("a", domain.PriorityHigh, 60)},
		nil, domain.DefaultPreferences(), false)
	assert.Equal(t, 0.0, empty.Confidence, "confidence is zero exactly when nothing is scheduled")
	assert.False(t, empty.Success)

	placed := engine.ScheduleTasks(context.Background(),
		[]domain.Task{taskFixture("a", domain.PriorityHigh, 60)},
		[]domain.TimeRange{testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T12:00:00Z")},
		domain.DefaultPreferences(), false)
	assert.Greater(t, placed.Confidence, 0.0)
	assert.LessOrEqual(t, placed.Confidence, 1.0)
}

func TestPlacementEngine_MalformedTaskIsSkippedNotFatal(t *testing.T) {
	engine := NewPlacementEngine(DefaultPlacementConfig(), nil)
	tasks := []domain.Task{
		{ID: "broken", Title: "No duration", Priority: domain.PriorityHigh},
		taskFixture("ok", domain.PriorityMedium, 30),
	}
	availability := []domain.TimeRange{
		testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T12:00:00Z"),
	}

	result := engine.ScheduleTasks(context.Background(), tasks, availability, domain.DefaultPreferences(), false)

	require.True(t, result.Success)
	assert.Len(t, result.Schedule, 1)
	assert.Equal(t, []string{"broken"}, result.UnscheduledTasks)
}

func TestPlacementEngine_FlexedPreferencesDemoteDecision(t *testing.T) {
	engine := NewPlacementEngine(DefaultPlacementConfig(), nil)
	tasks := []domain.Task{taskFixture("evening", domain.PriorityHigh, 60)}
	// The only window is after working hours.
	availability := []domain.TimeRange{
		testRange(t, "2026-09-01T19:00:00Z", "2026-09-01T21:00:00Z"),
	}

	result := engine.ScheduleTasks(context.Background(), tasks, availability, domain.DefaultPreferences(), false)

	require.Len(t, result.Schedule, 1)
	explanation := result.Explanations["evening"]
	assert.Equal(t, domain.DecisionPreferenceFlexed, explanation.Decision)
	assert.Contains(t, explanation.PreferencesFlexed, "work_hours")
	assert.True(t, result.RequiresConfirmation)
}

func TestPlacementEngine_BlockedTimeViolationRequiresConfirmation(t *testing.T) {
	engine := NewPlacementEngine(DefaultPlacementConfig(), nil)
	prefs := domain.DefaultPreferences()
	prefs.Hard.BlockedTimes = []domain.TimeRange{
		testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T12:00:00Z"),
	}
	tasks := []domain.Task{taskFixture("t1", domain.PriorityHigh, 60)}
	availability := []domain.TimeRange{
		testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T10:00:00Z"),
	}

	result := engine.ScheduleTasks(context.Background(), tasks, availability, prefs, false)

	require.Len(t, result.Schedule, 1, "violations are reported, not blocking")
	assert.Equal(t, domain.DecisionConstraintViolated, result.Explanations["t1"].Decision)
	assert.True(t, result.RequiresConfirmation)
}

func TestPlacementEngine_CancellationReturnsPartialResult(t *testing.T) {
	engine := NewPlacementEngine(DefaultPlacementConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := []domain.Task{
		taskFixture("a", domain.PriorityHigh, 30),
		taskFixture("b", domain.PriorityLow, 30),
	}
	availability := []domain.TimeRange{
		testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T12:00:00Z"),
	}

	result := engine.ScheduleTasks(ctx, tasks, availability, domain.DefaultPreferences(), false)

	assert.Empty(t, result.Schedule)
	assert.ElementsMatch(t, []string{"a", "b"}, result.UnscheduledTasks)
}

func TestPlacementEngine_PreviewModeIsMarked(t *testing.T) {
	engine := NewPlacementEngine(DefaultPlacementConfig(), nil)
	result := engine.ScheduleTasks(context.Background(),
		[]domain.Task{taskFixture("a", domain.PriorityHigh, 30)},
		[]domain.TimeRange{testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T10:00:00Z")},
		domain.DefaultPreferences(), true)
	assert.True(t, result.Preview)
}

func TestPlacementEngine_AvailabilitySnapshotNotMutated(t *testing.T) {
	engine := NewPlacementEngine(DefaultPlacementConfig(), nil)
	availability := []domain.TimeRange{
		testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T13:00:00Z"),
	}
	original := availability[0]

	engine.ScheduleTasks(context.Background(),
		[]domain.Task{taskFixture("a", domain.PriorityHigh, 60)},
		availability, domain.DefaultPreferences(), false)

	assert.Equal(t, original, availability[0])
}

func TestPlacementEngine_RescheduleMissedTask_NextAvailable(t *testing.T) {
	engine := NewPlacementEngine(DefaultPlacementConfig(), nil)
	missed := taskFixture("missed", domain.PriorityHigh, 60)
	current := []domain.ScheduleBlock{
		{TaskID: "other", TimeRange: testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T10:00:00Z")},
	}
	availability := []domain.TimeRange{
		testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T13:00:00Z"),
	}

	result := engine.RescheduleMissedTask(context.Background(),
		missed, current, availability, domain.DefaultPreferences(), StrategyNextAvailable)

	require.Len(t, result.Schedule, 1)
	block := result.Schedule[0]
	assert.Equal(t, "missed", block.TaskID)
	assert.False(t, block.TimeRange.Overlaps(current[0].TimeRange),
		"the occupied slot must not be reused")
	assert.Equal(t, domain.DecisionConflictResolved, result.Explanations["missed"].Decision)
}

func TestPlacementEngine_RescheduleMissedTask_PromptUserRequiresConfirmation(t *testing.T) {
	engine := NewPlacementEngine(DefaultPlacementConfig(), nil)
	missed := taskFixture("missed", domain.PriorityMedium, 30)
	availability := []domain.TimeRange{
		testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T11:00:00Z"),
	}

	result := engine.RescheduleMissedTask(context.Background(),
		missed, nil, availability, domain.DefaultPreferences(), StrategyPromptUser)

	require.Len(t, result.Schedule, 1)
	assert.True(t, result.RequiresConfirmation)
}

func TestPlacementEngine_RescheduleMissedTask_UnknownStrategyFallsBack(t *testing.T) {
	engine := NewPlacementEngine(DefaultPlacementConfig(), nil)
	missed := taskFixture("missed", domain.PriorityMedium, 30)
	availability := []domain.TimeRange{
		testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T11:00:00Z"),
	}

	result := engine.RescheduleMissedTask(context.Background(),
		missed, nil, availability, domain.DefaultPreferences(), RescheduleStrategy("bogus"))

	assert.True(t, result.Success)
	assert.Len(t, result.Schedule, 1)
}

func TestPlacementEngine_DecisionLogCoversEveryTask(t *testing.T) {
	engine := NewPlacementEngine(DefaultPlacementConfig(), nil)
	tasks := []domain.Task{
		taskFixture("a", domain.PriorityHigh, 30),
		taskFixture("b", domain.PriorityLow, 30),
	}
	availability := []domain.TimeRange{
		testRange(t, "2026-09-01T09:00:00Z", "2026-09-01T12:00:00Z"),
	}

	result := engine.ScheduleTasks(context.Background(), tasks, availability, domain.DefaultPreferences(), false)

	stages := map[string]int{}
	for _, entry := range result.Metrics.Decisions {
		stages[entry.Stage]++
	}
	assert.Equal(t, 2, stages["prioritize"])
	assert.Equal(t, 2, stages["place"])
}
