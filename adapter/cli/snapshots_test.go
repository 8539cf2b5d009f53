package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyonthewallai/pulseplan/internal/scheduling/domain"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTasks_JSON(t *testing.T) {
	path := writeFixture(t, "tasks.json", `[
		{"id": "t1", "title": "Write report", "type": "focus",
		 "priority": "HIGH", "due_date": "2026-09-05", "estimated_minutes": 90},
		{"id": "t2", "title": "Inbox sweep", "type": "admin",
		 "priority": "low", "estimated_minutes": 30}
	]`)

	tasks, err := loadTasks(path, slog.Default())
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, domain.PriorityHigh, tasks[0].Priority)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, 2026, tasks[0].DueDate.Year())

	assert.Equal(t, domain.PriorityLow, tasks[1].Priority)
	assert.Nil(t, tasks[1].DueDate)
}

func TestLoadTasks_MalformedDueDateDegrades(t *testing.T) {
	path := writeFixture(t, "tasks.json", `[
		{"id": "t1", "title": "Write report", "type": "focus",
		 "priority": "HIGH", "due_date": "next tuesday", "estimated_minutes": 90}
	]`)

	tasks, err := loadTasks(path, slog.Default())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].DueDate, "bad due date drops, it does not fail the batch")
}

func TestLoadPreferences_YAML(t *testing.T) {
	path := writeFixture(t, "prefs.yaml", `
behavioral_weights:
  morning_preference: 0.9
  afternoon_preference: 0.2
hard_constraints:
  work_day_start_minute: 480
  work_day_end_minute: 1080
`)

	prefs, err := loadPreferences(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, prefs.Weights.Get(domain.WeightMorningPreference))
	assert.Equal(t, 480, prefs.Hard.WorkDayStartMinute)
}

func TestLoadPreferences_EmptyPathUsesDefaults(t *testing.T) {
	prefs, err := loadPreferences("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPreferences(), prefs)
}

func TestLoadPreferences_MissingFile(t *testing.T) {
	_, err := loadPreferences(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestParseFlexibleTime(t *testing.T) {
	tests := []struct {
		raw string
		ok  bool
	}{
		{"2026-09-01T10:00:00Z", true},
		{"2026-09-01T10:00", true},
		{"2026-09-01", true},
		{"tomorrow", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, ok := parseFlexibleTime(tt.raw)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
