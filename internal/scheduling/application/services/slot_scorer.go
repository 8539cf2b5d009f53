package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/flyonthewallai/pulseplan/internal/scheduling/domain"
)

// Term weights for the candidate slot score.
const (
	timeOfDayTerm  = 0.3
	focusTerm      = 0.4
	clusteringTerm = 0.2
	bufferTerm     = 0.1
)

// focusProtectionBonus is the flat score for a focus task landing inside a
// configured focus block.
const focusProtectionBonus = 0.4

// minBufferGap is the gap below which a neighboring block erodes the
// buffer score.
const minBufferGap = 15 * time.Minute

// ScoreSlot scores a candidate window for a task against preferences and
// the blocks already placed. Each term is zero unless its condition
// applies; the reasoning string lists every contributing factor with its
// weighted value.
func ScoreSlot(
	slot domain.TimeRange,
	task domain.Task,
	prefs domain.Preferences,
	placed []domain.ScheduleBlock,
) (float64, string) {
	var score float64
	var reasons []string

	if tod := timeOfDayWeight(slot.Start, prefs.Weights); tod > 0 {
		contribution := timeOfDayTerm * tod
		score += contribution
		reasons = append(reasons, fmt.Sprintf("time of day +%.2f", contribution))
	}

	if task.Type == "focus" && prefs.Soft.InFocusBlock(slot.Start) {
		score += focusProtectionBonus
		reasons = append(reasons, fmt.Sprintf("focus protection +%.2f", focusProtectionBonus))
	}

	if task.Type == "meeting" && hasMeetingNearby(slot, placed) {
		contribution := clusteringTerm * prefs.Weights.Get(domain.WeightMeetingClustering)
		score += contribution
		reasons = append(reasons, fmt.Sprintf("meeting clustering +%.2f", contribution))
	}

	if buffer := bufferScore(slot, placed); buffer > 0 {
		contribution := bufferTerm * buffer
		score += contribution
		reasons = append(reasons, fmt.Sprintf("buffer +%.2f", contribution))
	}

	if len(reasons) == 0 {
		return score, "no scoring factors apply to this window"
	}
	return score, strings.Join(reasons, ", ")
}

// timeOfDayWeight applies the learned morning or afternoon preference.
func timeOfDayWeight(start time.Time, weights domain.BehavioralWeights) float64 {
	hour := start.Hour()
	switch {
	case hour >= 9 && hour < 12:
		return weights.Get(domain.WeightMorningPreference)
	case hour >= 13 && hour < 17:
		return weights.Get(domain.WeightAfternoonPreference)
	default:
		return 0
	}
}

// hasMeetingNearby checks for another meeting block within two hours.
func hasMeetingNearby(slot domain.TimeRange, placed []domain.ScheduleBlock) bool {
	for _, block := range placed {
		if block.Type != "meeting" {
			continue
		}
		if slot.Gap(block.TimeRange) <= 2*time.Hour {
			return true
		}
	}
	return false
}

// bufferScore starts at 1.0 and loses 0.2 for each neighboring block with
// less than 15 minutes of breathing room, floored at zero.
func bufferScore(slot domain.TimeRange, placed []domain.ScheduleBlock) float64 {
	score := 1.0
	for _, block := range placed {
		if slot.Overlaps(block.TimeRange) {
			continue
		}
		if slot.Gap(block.TimeRange) < minBufferGap {
			score -= 0.2
		}
	}
	if score < 0 {
		return 0
	}
	return score
}
