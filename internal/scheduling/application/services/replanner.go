package services

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/flyonthewallai/pulseplan/internal/scheduling/domain"
)

// stabilityTolerance is the start-time drift under which a protected
// block still counts as "substantially the same" during validation.
const stabilityTolerance = 15 * time.Minute

// mergeGapThreshold is the same-task adjacency gap below which two blocks
// become a merge opportunity.
const mergeGapThreshold = 15 * time.Minute

// Disruption contribution of moving a block, by proximity to the nearest
// hard busy event.
const (
	disruptionOverlap  = 1.0
	disruptionAdjacent = 0.7 // within 30 minutes
	disruptionNear     = 0.4 // within 2 hours
	disruptionBase     = 0.1
)

// ScopeController classifies an existing committed schedule into
// protected and movable blocks under a requested replanning
// aggressiveness, with disruption and stability accounting.
type ScopeController struct {
	logger *slog.Logger
}

// NewScopeController creates a scope controller.
func NewScopeController(logger *slog.Logger) *ScopeController {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScopeController{logger: logger}
}

// AnalyzeReplanningScope computes which blocks may move under the scope's
// effective constraint, how disruptive moving them would be, and which
// same-task blocks could merge. The input blocks are never mutated.
func (c *ScopeController) AnalyzeReplanningScope(
	existing []domain.ScheduleBlock,
	newTasks []domain.Task,
	busyEvents []domain.BusyEvent,
	prefs domain.Preferences,
	scope domain.ReplanScope,
	custom *domain.ReplanConstraint,
) domain.ReplanResult {
	effective := scope.Constraint()
	if custom != nil {
		effective = effective.Merge(*custom)
	}

	result := domain.ReplanResult{
		AllowedChanges:  make(map[string][]domain.ChangeType, len(existing)),
		ProtectedBlocks: make(map[string]bool),
	}
	if len(existing) == 0 {
		result.StabilityRatio = 1.0
		return result
	}

	var candidates []movableBlock
	for _, block := range existing {
		if effective.IsProtected(block.TaskID) || effective.OverlapsFrozenPeriod(block.TimeRange) {
			result.ProtectedBlocks[block.TaskID] = true
			continue
		}
		candidates = append(candidates, movableBlock{
			block:        block,
			contribution: disruptionContribution(block, busyEvents),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].contribution != candidates[j].contribution {
			return candidates[i].contribution > candidates[j].contribution
		}
		return candidates[i].block.Start.Before(candidates[j].block.Start)
	})

	// The stability floor binds the mover cap alongside the explicit
	// block cap: at least minStability of the schedule must stay put.
	moverCap := len(candidates)
	if effective.MaxBlocksToMove != nil && *effective.MaxBlocksToMove < moverCap {
		moverCap = *effective.MaxBlocksToMove
	}
	stabilityCap := len(existing) - int(math.Ceil(effective.MinStabilityRatio*float64(len(existing))))
	if stabilityCap < moverCap {
		moverCap = stabilityCap
	}
	if moverCap < 0 {
		moverCap = 0
	}

	movers := candidates[:moverCap]
	for _, demoted := range candidates[moverCap:] {
		result.ProtectedBlocks[demoted.block.TaskID] = true
	}

	// Trim the most disruptive movers until under the disruption ceiling.
	for len(movers) > 0 && meanContribution(movers)*100 > effective.MaxDisruptionScore {
		result.ProtectedBlocks[movers[0].block.TaskID] = true
		movers = movers[1:]
	}

	allowed := []domain.ChangeType{domain.ChangeMove, domain.ChangeReschedule}
	if scope.AllowsMerge() {
		allowed = append(allowed, domain.ChangeMerge)
	}
	if scope.AllowsCancel() {
		allowed = append(allowed, domain.ChangeCancel)
	}

	moverIDs := make(map[string]bool, len(movers))
	for _, m := range movers {
		result.MoveCandidates = append(result.MoveCandidates, m.block.TaskID)
		moverIDs[m.block.TaskID] = true
	}
	for _, block := range existing {
		if moverIDs[block.TaskID] {
			result.AllowedChanges[block.TaskID] = append([]domain.ChangeType(nil), allowed...)
		} else {
			result.AllowedChanges[block.TaskID] = []domain.ChangeType{domain.ChangeNone}
		}
	}

	if scope.AllowsMerge() {
		result.MergeOpportunities = mergeOpportunities(existing, moverIDs)
	}

	if len(movers) > 0 {
		result.DisruptionScore = math.Round(meanContribution(movers) * 100)
	}
	stable := 0
	for _, changes := range result.AllowedChanges {
		if len(changes) == 1 && changes[0] == domain.ChangeNone {
			stable++
		}
	}
	result.StabilityRatio = float64(stable) / float64(len(existing))

	c.logger.Debug("replanning scope analyzed",
		"scope", string(scope),
		"new_tasks", len(newTasks),
		"move_candidates", len(result.MoveCandidates),
		"disruption_score", result.DisruptionScore,
		"stability_ratio", result.StabilityRatio,
	)
	return result
}

// FilterExistingBlocks partitions blocks into protected and changeable
// sets by protected-block membership. Pure partition, no side effects.
func (c *ScopeController) FilterExistingBlocks(
	existing []domain.ScheduleBlock,
	result domain.ReplanResult,
) (protected, changeable []domain.ScheduleBlock) {
	for _, block := range existing {
		if result.ProtectedBlocks[block.TaskID] {
			protected = append(protected, block)
		} else {
			changeable = append(changeable, block)
		}
	}
	return protected, changeable
}

// ValidateReplanningResult checks that every protected block survived the
// replanning substantially unchanged: its new start time must be within
// the stability tolerance of the old one. It inspects only, never mutates.
func (c *ScopeController) ValidateReplanningResult(
	oldBlocks, newBlocks []domain.ScheduleBlock,
	result domain.ReplanResult,
) (bool, []string) {
	newByTask := make(map[string]domain.ScheduleBlock, len(newBlocks))
	for _, b := range newBlocks {
		if _, seen := newByTask[b.TaskID]; !seen {
			newByTask[b.TaskID] = b
		}
	}

	var violations []string
	for _, old := range oldBlocks {
		if !result.ProtectedBlocks[old.TaskID] {
			continue
		}
		replaced, ok := newByTask[old.TaskID]
		if !ok {
			violations = append(violations,
				fmt.Sprintf("protected block %s was removed", old.TaskID))
			continue
		}
		drift := replaced.Start.Sub(old.Start)
		if drift < 0 {
			drift = -drift
		}
		if drift > stabilityTolerance {
			violations = append(violations, fmt.Sprintf(
				"protected block %s moved from %s to %s (beyond %s tolerance)",
				old.TaskID,
				old.Start.Format(time.RFC3339),
				replaced.Start.Format(time.RFC3339),
				stabilityTolerance,
			))
		}
	}
	return len(violations) == 0, violations
}

// disruptionContribution measures how much moving a block would perturb
// the schedule, by its proximity to the nearest hard busy event.
func disruptionContribution(block domain.ScheduleBlock, busyEvents []domain.BusyEvent) float64 {
	contribution := disruptionBase
	for _, event := range busyEvents {
		if !event.Hard {
			continue
		}
		switch gap := block.TimeRange.Gap(event.TimeRange); {
		case block.TimeRange.Overlaps(event.TimeRange):
			return disruptionOverlap
		case gap <= 30*time.Minute && disruptionAdjacent > contribution:
			contribution = disruptionAdjacent
		case gap <= 2*time.Hour && disruptionNear > contribution:
			contribution = disruptionNear
		}
	}
	return contribution
}

// mergeOpportunities finds pairs of movable blocks sharing a task id
// whose gap is below the merge threshold.
func mergeOpportunities(blocks []domain.ScheduleBlock, movable map[string]bool) [][2]string {
	byTask := make(map[string][]domain.ScheduleBlock)
	for _, b := range blocks {
		if movable[b.TaskID] {
			byTask[b.TaskID] = append(byTask[b.TaskID], b)
		}
	}

	var pairs [][2]string
	for taskID, group := range byTask {
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Start.Before(group[j].Start)
		})
		for i := 0; i < len(group)-1; i++ {
			if group[i].TimeRange.Gap(group[i+1].TimeRange) <= mergeGapThreshold {
				pairs = append(pairs, [2]string{taskID, taskID})
			}
		}
	}
	return pairs
}

// movableBlock pairs a block with its disruption contribution during
// scope analysis.
type movableBlock struct {
	block        domain.ScheduleBlock
	contribution float64
}

func meanContribution(movers []movableBlock) float64 {
	if len(movers) == 0 {
		return 0
	}
	total := 0.0
	for _, m := range movers {
		total += m.contribution
	}
	return total / float64(len(movers))
}
