package domain

import (
	"strings"
	"time"
)

// ReplanScope is a named aggressiveness preset for replanning.
type ReplanScope string

const (
	ScopeMinimal    ReplanScope = "minimal"
	ScopeModerate   ReplanScope = "moderate"
	ScopeAggressive ReplanScope = "aggressive"
	ScopeComplete   ReplanScope = "complete"
)

// ParseReplanScope maps a raw scope string to a ReplanScope.
func ParseReplanScope(raw string) (ReplanScope, error) {
	switch ReplanScope(strings.ToLower(strings.TrimSpace(raw))) {
	case ScopeMinimal:
		return ScopeMinimal, nil
	case ScopeModerate:
		return ScopeModerate, nil
	case ScopeAggressive:
		return ScopeAggressive, nil
	case ScopeComplete:
		return ScopeComplete, nil
	default:
		return "", ErrUnknownScope
	}
}

// AllowsMerge reports whether the scope permits merging same-task blocks.
func (s ReplanScope) AllowsMerge() bool {
	return s == ScopeAggressive || s == ScopeComplete
}

// AllowsCancel reports whether the scope permits cancelling blocks.
func (s ReplanScope) AllowsCancel() bool {
	return s == ScopeComplete
}

// ChangeType is a kind of permitted mutation for an existing block.
type ChangeType string

const (
	ChangeNone       ChangeType = "none"
	ChangeMove       ChangeType = "move"
	ChangeReschedule ChangeType = "reschedule"
	ChangeMerge      ChangeType = "merge"
	ChangeCancel     ChangeType = "cancel"
)

// ReplanConstraint bounds how disruptive a replanning run may be.
// Nil MaxBlocksToMove / MaxMoveDistance mean unlimited.
type ReplanConstraint struct {
	ProtectedTaskIDs  map[string]bool `json:"protected_task_ids,omitempty"`
	FrozenPeriods     []TimeRange     `json:"frozen_periods,omitempty"`
	MaxBlocksToMove   *int            `json:"max_blocks_to_move,omitempty"`
	MaxMoveDistance   *time.Duration  `json:"max_move_distance,omitempty"`
	MinStabilityRatio float64         `json:"min_stability_ratio"`
	// MaxDisruptionScore is the 0-100 ceiling on the disruption score.
	// Zero means unset, so "no disruption at all" cannot be expressed as
	// a score bound; protect the blocks or raise MinStabilityRatio to 1
	// instead.
	MaxDisruptionScore float64 `json:"max_disruption_score"`
	PreserveAdjacency  bool    `json:"preserve_adjacency"`
}

// Merge combines two constraints, taking the stricter value for every
// numeric bound: the union of protected sets and frozen periods, the
// higher stability floor, the lower disruption ceiling, the lower move
// caps, and the OR of adjacency preservation. A zero MaxDisruptionScore
// on either side is treated as unset.
func (c ReplanConstraint) Merge(other ReplanConstraint) ReplanConstraint {
	merged := ReplanConstraint{
		ProtectedTaskIDs:  make(map[string]bool, len(c.ProtectedTaskIDs)+len(other.ProtectedTaskIDs)),
		FrozenPeriods:     make([]TimeRange, 0, len(c.FrozenPeriods)+len(other.FrozenPeriods)),
		PreserveAdjacency: c.PreserveAdjacency || other.PreserveAdjacency,
	}
	for id := range c.ProtectedTaskIDs {
		merged.ProtectedTaskIDs[id] = true
	}
	for id := range other.ProtectedTaskIDs {
		merged.ProtectedTaskIDs[id] = true
	}
	merged.FrozenPeriods = append(merged.FrozenPeriods, c.FrozenPeriods...)
	merged.FrozenPeriods = append(merged.FrozenPeriods, other.FrozenPeriods...)

	merged.MaxBlocksToMove = minIntPtr(c.MaxBlocksToMove, other.MaxBlocksToMove)
	merged.MaxMoveDistance = minDurPtr(c.MaxMoveDistance, other.MaxMoveDistance)

	merged.MinStabilityRatio = c.MinStabilityRatio
	if other.MinStabilityRatio > merged.MinStabilityRatio {
		merged.MinStabilityRatio = other.MinStabilityRatio
	}

	switch {
	case c.MaxDisruptionScore == 0:
		merged.MaxDisruptionScore = other.MaxDisruptionScore
	case other.MaxDisruptionScore == 0:
		merged.MaxDisruptionScore = c.MaxDisruptionScore
	case other.MaxDisruptionScore < c.MaxDisruptionScore:
		merged.MaxDisruptionScore = other.MaxDisruptionScore
	default:
		merged.MaxDisruptionScore = c.MaxDisruptionScore
	}

	return merged
}

// IsProtected checks whether a task id is in the protected set.
func (c ReplanConstraint) IsProtected(taskID string) bool {
	return c.ProtectedTaskIDs[taskID]
}

// OverlapsFrozenPeriod checks whether a range touches any frozen period.
func (c ReplanConstraint) OverlapsFrozenPeriod(r TimeRange) bool {
	for _, frozen := range c.FrozenPeriods {
		if r.Overlaps(frozen) {
			return true
		}
	}
	return false
}

// scopePresets resolves each named scope to its fixed constraint.
// Adding a scope is a data change, not new branching logic.
var scopePresets = map[ReplanScope]ReplanConstraint{
	ScopeMinimal: {
		MaxBlocksToMove:    intPtr(2),
		MaxMoveDistance:    durPtr(1 * time.Hour),
		MinStabilityRatio:  0.95,
		MaxDisruptionScore: 20,
		PreserveAdjacency:  true,
	},
	ScopeModerate: {
		MaxBlocksToMove:    intPtr(5),
		MaxMoveDistance:    durPtr(4 * time.Hour),
		MinStabilityRatio:  0.75,
		MaxDisruptionScore: 50,
		PreserveAdjacency:  true,
	},
	ScopeAggressive: {
		MaxBlocksToMove:    intPtr(10),
		MaxMoveDistance:    durPtr(12 * time.Hour),
		MinStabilityRatio:  0.40,
		MaxDisruptionScore: 80,
		PreserveAdjacency:  false,
	},
	ScopeComplete: {
		MinStabilityRatio:  0.0,
		MaxDisruptionScore: 100,
		PreserveAdjacency:  false,
	},
}

// Constraint resolves the scope's preset. The returned value owns its own
// protected set so callers may merge into it freely.
func (s ReplanScope) Constraint() ReplanConstraint {
	preset, ok := scopePresets[s]
	if !ok {
		preset = scopePresets[ScopeModerate]
	}
	out := preset
	out.ProtectedTaskIDs = make(map[string]bool)
	out.FrozenPeriods = append([]TimeRange(nil), preset.FrozenPeriods...)
	if preset.MaxBlocksToMove != nil {
		out.MaxBlocksToMove = intPtr(*preset.MaxBlocksToMove)
	}
	if preset.MaxMoveDistance != nil {
		out.MaxMoveDistance = durPtr(*preset.MaxMoveDistance)
	}
	return out
}

// ReplanResult is the outcome of a scope analysis.
type ReplanResult struct {
	AllowedChanges     map[string][]ChangeType `json:"allowed_changes"`
	ProtectedBlocks    map[string]bool         `json:"protected_blocks"`
	MoveCandidates     []string                `json:"move_candidates"`
	MergeOpportunities [][2]string             `json:"merge_opportunities,omitempty"`
	DisruptionScore    float64                 `json:"disruption_score"`
	StabilityRatio     float64                 `json:"stability_ratio"`
}

func intPtr(v int) *int                     { return &v }
func durPtr(v time.Duration) *time.Duration { return &v }

func minIntPtr(a, b *int) *int {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return intPtr(*b)
	case b == nil:
		return intPtr(*a)
	case *b < *a:
		return intPtr(*b)
	default:
		return intPtr(*a)
	}
}

func minDurPtr(a, b *time.Duration) *time.Duration {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return durPtr(*b)
	case b == nil:
		return durPtr(*a)
	case *b < *a:
		return durPtr(*b)
	default:
		return durPtr(*a)
	}
}
