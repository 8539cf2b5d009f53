package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRange(t *testing.T, start, end string) TimeRange {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	require.NoError(t, err)
	e, err := time.Parse(time.RFC3339, end)
	require.NoError(t, err)
	return TimeRange{Start: s, End: e}
}

func TestNewTimeRange_RejectsInvertedRange(t *testing.T) {
	now := time.Now()
	_, err := NewTimeRange(now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = NewTimeRange(now, now)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestTimeRange_Overlaps(t *testing.T) {
	a := mustRange(t, "2026-09-01T09:00:00Z", "2026-09-01T10:00:00Z")

	tests := []struct {
		name  string
		other TimeRange
		want  bool
	}{
		{"fully inside", mustRange(t, "2026-09-01T09:15:00Z", "2026-09-01T09:45:00Z"), true},
		{"partial overlap", mustRange(t, "2026-09-01T09:30:00Z", "2026-09-01T10:30:00Z"), true},
		{"adjacent after", mustRange(t, "2026-09-01T10:00:00Z", "2026-09-01T11:00:00Z"), false},
		{"disjoint before", mustRange(t, "2026-09-01T07:00:00Z", "2026-09-01T08:00:00Z"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.other))
		})
	}
}

func TestTimeRange_Gap(t *testing.T) {
	a := mustRange(t, "2026-09-01T09:00:00Z", "2026-09-01T10:00:00Z")
	b := mustRange(t, "2026-09-01T10:45:00Z", "2026-09-01T11:00:00Z")

	assert.Equal(t, 45*time.Minute, a.Gap(b))
	assert.Equal(t, 45*time.Minute, b.Gap(a))

	overlapping := mustRange(t, "2026-09-01T09:30:00Z", "2026-09-01T10:30:00Z")
	assert.Equal(t, time.Duration(0), a.Gap(overlapping))
}

func TestSubtractWindow(t *testing.T) {
	windows := []TimeRange{mustRange(t, "2026-09-01T09:00:00Z", "2026-09-01T13:00:00Z")}
	used := mustRange(t, "2026-09-01T10:00:00Z", "2026-09-01T11:00:00Z")

	got := SubtractWindow(windows, used)
	require.Len(t, got, 2)
	assert.Equal(t, mustRange(t, "2026-09-01T09:00:00Z", "2026-09-01T10:00:00Z"), got[0])
	assert.Equal(t, mustRange(t, "2026-09-01T11:00:00Z", "2026-09-01T13:00:00Z"), got[1])

	// The input snapshot is untouched.
	assert.Equal(t, mustRange(t, "2026-09-01T09:00:00Z", "2026-09-01T13:00:00Z"), windows[0])
}

func TestSubtractWindow_ConsumesWholeWindow(t *testing.T) {
	windows := []TimeRange{mustRange(t, "2026-09-01T09:00:00Z", "2026-09-01T10:00:00Z")}
	got := SubtractWindow(windows, windows[0])
	assert.Empty(t, got)
}
