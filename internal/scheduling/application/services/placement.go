package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flyonthewallai/pulseplan/internal/scheduling/domain"
)

// RescheduleStrategy selects how a missed task is put back on the calendar.
type RescheduleStrategy string

const (
	StrategyPromptUser       RescheduleStrategy = "prompt_user"
	StrategyNextAvailable    RescheduleStrategy = "next_available"
	StrategyReprioritizeWeek RescheduleStrategy = "reprioritize_week"
)

// PlacementConfig tunes the placement engine.
type PlacementConfig struct {
	// SlotStep is the candidate enumeration step within free windows.
	SlotStep time.Duration
	// ConfidenceThreshold below which results require user confirmation.
	ConfidenceThreshold float64
}

// DefaultPlacementConfig returns the standard configuration.
func DefaultPlacementConfig() PlacementConfig {
	return PlacementConfig{
		SlotStep:            30 * time.Minute,
		ConfidenceThreshold: 0.7,
	}
}

// PlacementEngine assigns a prioritized task batch to the best available
// windows, producing a full explanation per decision. It is a pure
// computation over caller-supplied snapshots: no state survives a call.
type PlacementEngine struct {
	config PlacementConfig
	logger *slog.Logger
}

// NewPlacementEngine creates a placement engine.
func NewPlacementEngine(config PlacementConfig, logger *slog.Logger) *PlacementEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if config.SlotStep <= 0 {
		config.SlotStep = 30 * time.Minute
	}
	if config.ConfidenceThreshold <= 0 {
		config.ConfidenceThreshold = 0.7
	}
	return &PlacementEngine{config: config, logger: logger}
}

// ScheduleTasks places every task in the batch greedily, in priority
// order, removing each chosen window from availability before the next
// task is processed. Tasks that cannot be placed land in
// UnscheduledTasks; the run never fails as a whole.
func (e *PlacementEngine) ScheduleTasks(
	ctx context.Context,
	tasks []domain.Task,
	availability []domain.TimeRange,
	prefs domain.Preferences,
	preview bool,
) domain.SchedulingResult {
	started := time.Now()
	log := domain.NewDecisionLog()
	prefs = prefs.Normalize()

	result := domain.SchedulingResult{
		Schedule:     make([]domain.ScheduleBlock, 0, len(tasks)),
		Explanations: make(map[string]domain.Explanation, len(tasks)),
		Preview:      preview,
	}

	valid := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if err := task.Validate(); err != nil {
			e.logger.Warn("skipping malformed task",
				"task_id", task.ID, "title", task.Title, "error", err)
			result.UnscheduledTasks = append(result.UnscheduledTasks, task.ID)
			log.Record(domain.DecisionEntry{
				Stage: "validate", TaskID: task.ID,
				Note: "skipped: " + err.Error(),
			})
			continue
		}
		valid = append(valid, task)
	}

	free := make([]domain.TimeRange, 0, len(availability))
	for _, w := range availability {
		if w.IsValid() {
			free = append(free, w)
		}
	}

	ordered := PrioritizeTasks(valid, prefs, started, log)
	slotsEvaluated := 0
	flexedBlocks := 0
	anyViolated := false

	for i, item := range ordered {
		if ctx.Err() != nil {
			// Cooperative cancellation: already-placed blocks stay valid,
			// the rest of the batch is returned unscheduled.
			for _, remaining := range ordered[i:] {
				result.UnscheduledTasks = append(result.UnscheduledTasks, remaining.Task.ID)
			}
			break
		}

		task := item.Task
		candidates := enumerateCandidates(free, task.Duration(), e.config.SlotStep)
		if len(candidates) == 0 {
			result.UnscheduledTasks = append(result.UnscheduledTasks, task.ID)
			result.Explanations[task.ID] = noSlotExplanation(task)
			log.Record(domain.DecisionEntry{
				Stage: "place", TaskID: task.ID, Note: "no slot found",
			})
			continue
		}

		ranked := make([]domain.RankedSlot, 0, len(candidates))
		for _, c := range candidates {
			score, reasoning := ScoreSlot(c, task, prefs, result.Schedule)
			ranked = append(ranked, domain.RankedSlot{
				TimeRange: c, Score: score, Reasoning: reasoning,
			})
		}
		slotsEvaluated += len(ranked)

		best := chooseBest(ranked)
		decision, honored, flexed, constraints := e.checkPlacement(best.TimeRange, task, prefs, result.Schedule)
		confidence := blockConfidence(best.Score, len(flexed) > 0, decision == domain.DecisionConstraintViolated)

		block := domain.ScheduleBlock{
			TaskID:                task.ID,
			Title:                 task.Title,
			Type:                  task.Type,
			TimeRange:             best.TimeRange,
			UtilityScore:          best.Score,
			CompletionProbability: completionProbability(best.Score),
		}
		result.Schedule = append(result.Schedule, block)
		result.Explanations[task.ID] = BuildExplanation(
			decision, best, alternativesFor(ranked, best), confidence, constraints, honored, flexed)

		log.Record(domain.DecisionEntry{
			Stage: "place", TaskID: task.ID, Score: best.Score,
			Factors: map[string]float64{"confidence": confidence},
			Note:    string(decision),
		})

		if len(flexed) > 0 {
			flexedBlocks++
		}
		if decision == domain.DecisionConstraintViolated {
			anyViolated = true
		}

		free = domain.SubtractWindow(free, best.TimeRange)
	}

	result.Confidence = meanConfidence(result.Schedule, result.Explanations)
	result.Success = len(result.Schedule) > 0 || len(tasks) == 0
	result.RequiresConfirmation = anyViolated ||
		(len(result.Schedule) > 0 && flexedBlocks*2 > len(result.Schedule)) ||
		(len(result.Schedule) > 0 && result.Confidence < e.config.ConfidenceThreshold)
	result.OverallExplanation = overallSummary(len(result.Schedule), len(result.UnscheduledTasks), result.Confidence)
	result.Metrics = domain.RunMetrics{
		TasksConsidered: len(tasks),
		SlotsEvaluated:  slotsEvaluated,
		Scheduled:       len(result.Schedule),
		Unscheduled:     len(result.UnscheduledTasks),
		Elapsed:         time.Since(started),
		Decisions:       log.Entries(),
	}

	e.logger.Info("placement run finished",
		"scheduled", len(result.Schedule),
		"unscheduled", len(result.UnscheduledTasks),
		"confidence", result.Confidence,
		"preview", preview,
	)
	return result
}

// RescheduleMissedTask finds a new home for a task whose block was missed.
func (e *PlacementEngine) RescheduleMissedTask(
	ctx context.Context,
	missed domain.Task,
	current []domain.ScheduleBlock,
	availability []domain.TimeRange,
	prefs domain.Preferences,
	strategy RescheduleStrategy,
) domain.SchedulingResult {
	// The missed block's own slot is free again; everything else stays
	// occupied.
	others := make([]domain.ScheduleBlock, 0, len(current))
	for _, block := range current {
		if block.TaskID != missed.ID {
			others = append(others, block)
		}
	}
	free := availability
	for _, occupied := range domain.BlockOccupancy(others) {
		free = domain.SubtractWindow(free, occupied)
	}

	switch strategy {
	case StrategyNextAvailable, StrategyPromptUser:
		// placement below
	case StrategyReprioritizeWeek:
		missed.Priority = missed.Priority.Raise()
	default:
		e.logger.Warn("unknown reschedule strategy, using next_available",
			"strategy", string(strategy), "task_id", missed.ID)
		strategy = StrategyNextAvailable
	}

	result := e.ScheduleTasks(ctx, []domain.Task{missed}, free, prefs, false)
	if exp, ok := result.Explanations[missed.ID]; ok && exp.Decision == domain.DecisionOptimalPlacement {
		// A clean placement after a miss is a resolved conflict, not a
		// fresh optimal choice.
		exp.Decision = domain.DecisionConflictResolved
		result.Explanations[missed.ID] = exp
	}
	if strategy == StrategyPromptUser && len(result.Schedule) > 0 {
		result.RequiresConfirmation = true
		result.OverallExplanation = fmt.Sprintf(
			"Proposed new slot for %q at %s; confirm to apply.",
			missed.Title, result.Schedule[0].Start.Format("Mon 15:04"))
	}
	return result
}

// enumerateCandidates slices free windows into task-length candidates at
// the configured step.
func enumerateCandidates(free []domain.TimeRange, duration, step time.Duration) []domain.TimeRange {
	var out []domain.TimeRange
	for _, w := range free {
		for start := w.Start; !start.Add(duration).After(w.End); start = start.Add(step) {
			out = append(out, domain.TimeRange{Start: start, End: start.Add(duration)})
		}
	}
	return out
}

// chooseBest picks the maximum-score slot; ties go to the earliest start.
func chooseBest(ranked []domain.RankedSlot) domain.RankedSlot {
	best := ranked[0]
	for _, r := range ranked[1:] {
		if r.Score > best.Score ||
			(r.Score == best.Score && r.Start.Before(best.Start)) {
			best = r
		}
	}
	return best
}

// alternativesFor returns every ranked slot except the chosen one.
func alternativesFor(ranked []domain.RankedSlot, chosen domain.RankedSlot) []domain.RankedSlot {
	out := make([]domain.RankedSlot, 0, len(ranked))
	for _, r := range ranked {
		if r.Start.Equal(chosen.Start) && r.End.Equal(chosen.End) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// checkPlacement classifies the chosen slot against hard constraints and
// soft preferences. Violations never block placement: a blocked-time
// overlap marks the decision CONSTRAINT_VIOLATED, a work-hour spill is a
// flexed preference.
func (e *PlacementEngine) checkPlacement(
	slot domain.TimeRange,
	task domain.Task,
	prefs domain.Preferences,
	placed []domain.ScheduleBlock,
) (decision domain.DecisionType, honored, flexed, constraints []string) {
	constraints = []string{"work_hours", "blocked_times"}
	decision = domain.DecisionOptimalPlacement

	if prefs.Hard.WithinWorkHours(slot) {
		honored = append(honored, "work_hours")
	} else {
		flexed = append(flexed, "work_hours")
		decision = domain.DecisionPreferenceFlexed
	}

	if prefs.Hard.OverlapsBlockedTime(slot) {
		decision = domain.DecisionConstraintViolated
	}

	if task.Type == "meeting" && prefs.Hard.MaxMeetingsPerDay > 0 {
		constraints = append(constraints, "max_meetings_per_day")
		if meetingsOnDay(placed, slot.Start) >= prefs.Hard.MaxMeetingsPerDay {
			decision = domain.DecisionConstraintViolated
		}
	}

	if task.Type == "focus" && prefs.Soft.InFocusBlock(slot.Start) {
		honored = append(honored, "focus_blocks")
	}
	return decision, honored, flexed, constraints
}

// meetingsOnDay counts meeting blocks already placed on the given day.
func meetingsOnDay(placed []domain.ScheduleBlock, day time.Time) int {
	count := 0
	for _, b := range placed {
		if b.Type == "meeting" &&
			b.Start.Year() == day.Year() && b.Start.YearDay() == day.YearDay() {
			count++
		}
	}
	return count
}

// blockConfidence derives a per-block confidence from the slot score,
// discounted when preferences were flexed or constraints violated.
// Placed blocks never report zero confidence.
func blockConfidence(score float64, flexed, violated bool) float64 {
	confidence := score
	if confidence > 1 {
		confidence = 1
	}
	if flexed {
		confidence *= 0.8
	}
	if violated {
		confidence *= 0.6
	}
	if confidence < 0.05 {
		confidence = 0.05
	}
	return confidence
}

// completionProbability estimates how likely the task finishes in the
// chosen window, proxied by placement quality.
func completionProbability(score float64) float64 {
	p := 0.5 + 0.5*score
	if p > 1 {
		return 1
	}
	return p
}

// meanConfidence averages per-block confidences; an empty schedule is 0.
func meanConfidence(blocks []domain.ScheduleBlock, explanations map[string]domain.Explanation) float64 {
	if len(blocks) == 0 {
		return 0
	}
	total := 0.0
	for _, b := range blocks {
		total += explanations[b.TaskID].Confidence
	}
	return total / float64(len(blocks))
}

func overallSummary(scheduled, unscheduled int, confidence float64) string {
	if scheduled == 0 && unscheduled > 0 {
		return fmt.Sprintf("No tasks could be scheduled; %d remain unplaced.", unscheduled)
	}
	if unscheduled > 0 {
		return fmt.Sprintf("Scheduled %d tasks (%d unplaced) with overall confidence %.2f.",
			scheduled, unscheduled, confidence)
	}
	return fmt.Sprintf("Scheduled %d tasks with overall confidence %.2f.", scheduled, confidence)
}
