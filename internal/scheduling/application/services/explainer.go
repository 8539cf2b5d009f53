package services

import (
	"fmt"
	"sort"

	"github.com/flyonthewallai/pulseplan/internal/scheduling/domain"
)

// maxAlternatives caps how many rejected windows an explanation surfaces.
const maxAlternatives = 3

// BuildExplanation turns a chosen slot, its score, and the rejected
// alternatives into a structured, user-facing explanation.
func BuildExplanation(
	decision domain.DecisionType,
	chosen domain.RankedSlot,
	alternatives []domain.RankedSlot,
	confidence float64,
	constraintsApplied []string,
	honored []string,
	flexed []string,
) domain.Explanation {
	ranked := make([]domain.RankedSlot, len(alternatives))
	copy(ranked, alternatives)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > maxAlternatives {
		ranked = ranked[:maxAlternatives]
	}

	var tradeoffs []string
	for _, f := range flexed {
		tradeoffs = append(tradeoffs, fmt.Sprintf("flexed %s to fit this task", f))
	}

	return domain.Explanation{
		Decision:           decision,
		Reason:             placementReason(chosen.Score, chosen.TimeRange),
		Confidence:         confidence,
		Tradeoffs:          tradeoffs,
		Alternatives:       ranked,
		ConstraintsApplied: constraintsApplied,
		PreferencesHonored: honored,
		PreferencesFlexed:  flexed,
	}
}

// placementReason buckets the slot score into a parameterized sentence
// including the chosen time range.
func placementReason(score float64, slot domain.TimeRange) string {
	window := fmt.Sprintf("%s–%s",
		slot.Start.Format("Mon 15:04"), slot.End.Format("15:04"))
	switch {
	case score >= 0.8:
		return fmt.Sprintf("Optimal placement at %s: this window matches your preferences best.", window)
	case score >= 0.6:
		return fmt.Sprintf("Good placement at %s with minor compromises.", window)
	case score >= 0.4:
		return fmt.Sprintf("Acceptable placement at %s; better windows were unavailable.", window)
	default:
		return fmt.Sprintf("Suboptimal placement at %s; limited availability forced a compromise.", window)
	}
}

// noSlotExplanation is the canned explanation for a task that could not
// be placed anywhere.
func noSlotExplanation(task domain.Task) domain.Explanation {
	return domain.Explanation{
		Decision:   domain.DecisionNoSlotFound,
		Reason:     fmt.Sprintf("No free window of %d minutes was available for %q.", task.EstimatedMinutes, task.Title),
		Confidence: 0,
	}
}
