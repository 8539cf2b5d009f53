package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/flyonthewallai/pulseplan/internal/scheduling/domain"
)

// Slot finder method names surfaced in results.
const (
	MethodExactMatch = "exact_match"
	MethodHeuristic  = "heuristic"
	MethodAIFallback = "ai_fallback"
	MethodError      = "error"
)

// Heuristic term weights.
const (
	proximityTerm     = 0.4
	productivityTerm  = 0.3
	spacingTerm       = 0.2
	slotTimeOfDayTerm = 0.1
)

// BusyLoader supplies busy events for a time window. It is the caller's
// data boundary; the finder treats it as a blocking call.
type BusyLoader interface {
	LoadBusy(ctx context.Context, window domain.TimeRange) ([]domain.BusyEvent, error)
}

// StaticBusyLoader serves busy events from an in-memory snapshot.
type StaticBusyLoader []domain.BusyEvent

// LoadBusy returns the events overlapping the window.
func (l StaticBusyLoader) LoadBusy(_ context.Context, window domain.TimeRange) ([]domain.BusyEvent, error) {
	var out []domain.BusyEvent
	for _, e := range l {
		if e.TimeRange.Overlaps(window) {
			out = append(out, e)
		}
	}
	return out, nil
}

// SlotConstraints bound a single-event repair request.
type SlotConstraints struct {
	PreferMorning      bool `json:"prefer_morning"`
	PreferAfternoon    bool `json:"prefer_afternoon"`
	MaxShiftMinutes    int  `json:"max_shift_minutes,omitempty"`
	WorkDayStartMinute int  `json:"work_day_start_minute,omitempty"`
	WorkDayEndMinute   int  `json:"work_day_end_minute,omitempty"`
}

// ReasoningRequest is the payload handed to the external reasoning
// collaborator when local heuristics find no slot.
type ReasoningRequest struct {
	EventTitle      string             `json:"event_title"`
	PreferredStart  time.Time          `json:"preferred_start"`
	DurationMinutes int                `json:"duration_minutes"`
	BusySlots       []domain.BusyEvent `json:"busy_slots"`
	Constraints     SlotConstraints    `json:"constraints"`
}

// ReasoningProposal is the collaborator's answer. It is untrusted input:
// the finder re-validates it before use.
type ReasoningProposal struct {
	NewStart     time.Time `json:"new_start"`
	MovedEventID string    `json:"moved_event,omitempty"`
	ShiftMinutes int       `json:"shift_minutes"`
	Reasoning    string    `json:"reasoning"`
}

// ReasoningService is the external reasoning fallback collaborator.
type ReasoningService interface {
	ProposeSlot(ctx context.Context, req ReasoningRequest) (*ReasoningProposal, error)
}

// maxFallbackShift caps how far the fallback may shift an existing
// flexible block.
const maxFallbackShift = 30

// SlotFinderConfig tunes the single-event repair search.
type SlotFinderConfig struct {
	// LoadWindow is how far around the preferred time busy events are loaded.
	LoadWindow time.Duration
	// SearchWindow is how far around the preferred time candidates are generated.
	SearchWindow time.Duration
	// Step is the candidate alignment grid.
	Step time.Duration
	// DefaultMaxShift caps the proximity decay when the request sets none.
	DefaultMaxShift time.Duration
	// MinBuffer is the breathing room rewarded by the spacing term.
	MinBuffer time.Duration
}

// DefaultSlotFinderConfig returns the standard configuration.
func DefaultSlotFinderConfig() SlotFinderConfig {
	return SlotFinderConfig{
		LoadWindow:      12 * time.Hour,
		SearchWindow:    6 * time.Hour,
		Step:            30 * time.Minute,
		DefaultMaxShift: 120 * time.Minute,
		MinBuffer:       30 * time.Minute,
	}
}

// SlotFinder is the single-event heuristic scheduler: exact-match fast
// path, scored local search, and an external reasoning fallback for
// complex conflicts. Failures are always structured results; the finder
// never returns a Go error across its boundary.
type SlotFinder struct {
	config    SlotFinderConfig
	busy      BusyLoader
	reasoning ReasoningService
	logger    *slog.Logger
}

// NewSlotFinder creates a slot finder. The reasoning service may be nil,
// in which case complex conflicts degrade straight to a failure result.
func NewSlotFinder(
	config SlotFinderConfig,
	busy BusyLoader,
	reasoning ReasoningService,
	logger *slog.Logger,
) *SlotFinder {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultSlotFinderConfig()
	if config.LoadWindow <= 0 {
		config.LoadWindow = def.LoadWindow
	}
	if config.SearchWindow <= 0 {
		config.SearchWindow = def.SearchWindow
	}
	if config.Step <= 0 {
		config.Step = def.Step
	}
	if config.DefaultMaxShift <= 0 {
		config.DefaultMaxShift = def.DefaultMaxShift
	}
	if config.MinBuffer <= 0 {
		config.MinBuffer = def.MinBuffer
	}
	return &SlotFinder{config: config, busy: busy, reasoning: reasoning, logger: logger}
}

// FindOptimalSlot schedules or reschedules one event near the preferred
// time.
func (f *SlotFinder) FindOptimalSlot(
	ctx context.Context,
	preferred time.Time,
	durationMinutes int,
	eventTitle string,
	constraints *SlotConstraints,
) domain.SchedulingResult {
	started := time.Now()
	if durationMinutes <= 0 {
		return f.failure(eventTitle, "event duration must be positive", started)
	}
	cons := SlotConstraints{}
	if constraints != nil {
		cons = *constraints
	}

	duration := time.Duration(durationMinutes) * time.Minute
	requested := domain.TimeRange{Start: preferred, End: preferred.Add(duration)}

	loadWindow := domain.TimeRange{
		Start: preferred.Add(-f.config.LoadWindow),
		End:   preferred.Add(f.config.LoadWindow),
	}
	busy, err := f.busy.LoadBusy(ctx, loadWindow)
	if err != nil {
		f.logger.Error("busy loader failed", "error", err)
		return f.failure(eventTitle, "could not load calendar availability", started)
	}

	// Fast path: the requested window is already free.
	if !overlapsAny(requested, busy) {
		return f.success(eventTitle, requested, 1.0, MethodExactMatch,
			"requested window is free", nil, started)
	}

	// Scored local search over 30-minute-aligned free windows.
	candidates := f.heuristicCandidates(preferred, duration, busy, cons)
	if len(candidates) > 0 {
		best := candidates[0]
		rejected := candidates[1:]
		if len(rejected) > maxAlternatives {
			rejected = rejected[:maxAlternatives]
		}
		return f.success(eventTitle, best.TimeRange, best.Score, MethodHeuristic,
			best.Reasoning, rejected, started)
	}

	// No feasible local slot: hand off to the external reasoning
	// collaborator.
	return f.fallback(ctx, eventTitle, preferred, durationMinutes, busy, cons, started)
}

// heuristicCandidates generates and scores every aligned free window in
// the search window, best first.
func (f *SlotFinder) heuristicCandidates(
	preferred time.Time,
	duration time.Duration,
	busy []domain.BusyEvent,
	cons SlotConstraints,
) []domain.SlotCandidate {
	maxShift := f.config.DefaultMaxShift
	if cons.MaxShiftMinutes > 0 {
		maxShift = time.Duration(cons.MaxShiftMinutes) * time.Minute
	}

	earliest := alignUp(preferred.Add(-f.config.SearchWindow), f.config.Step)
	latest := preferred.Add(f.config.SearchWindow)

	var candidates []domain.SlotCandidate
	for start := earliest; !start.After(latest); start = start.Add(f.config.Step) {
		window := domain.TimeRange{Start: start, End: start.Add(duration)}
		if overlapsAny(window, busy) {
			continue
		}
		score, reasoning := f.scoreCandidate(window, preferred, maxShift, busy, cons)
		candidates = append(candidates, domain.SlotCandidate{
			TimeRange: window,
			Score:     score,
			Reasoning: reasoning,
			Method:    MethodHeuristic,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		// Ties go to the window closest to the preferred time.
		return absDuration(candidates[i].Start.Sub(preferred)) <
			absDuration(candidates[j].Start.Sub(preferred))
	})
	return candidates
}

// scoreCandidate weighs proximity, productivity hours, spacing, and
// time-of-day preference. The result is clamped to [0,1].
func (f *SlotFinder) scoreCandidate(
	window domain.TimeRange,
	preferred time.Time,
	maxShift time.Duration,
	busy []domain.BusyEvent,
	cons SlotConstraints,
) (float64, string) {
	shift := absDuration(window.Start.Sub(preferred))
	proximity := math.Exp(-float64(shift) / float64(maxShift))
	productivity := productivityScore(window.Start.Hour())
	spacing := f.spacingScore(window, busy)
	timeOfDay := timeOfDayMatch(window.Start.Hour(), cons)

	score := proximityTerm*proximity +
		productivityTerm*productivity +
		spacingTerm*spacing +
		slotTimeOfDayTerm*timeOfDay
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	reasoning := fmt.Sprintf("proximity %.2f, productivity %.2f, spacing %.2f, time of day %.2f",
		proximity, productivity, spacing, timeOfDay)
	return score, reasoning
}

// spacingScore rewards breathing room on both sides of the window,
// normalized against the configured minimum buffer.
func (f *SlotFinder) spacingScore(window domain.TimeRange, busy []domain.BusyEvent) float64 {
	before := f.config.MinBuffer
	after := f.config.MinBuffer
	for _, event := range busy {
		if event.End.Before(window.Start) || event.End.Equal(window.Start) {
			if gap := window.Start.Sub(event.End); gap < before {
				before = gap
			}
		}
		if event.Start.After(window.End) || event.Start.Equal(window.End) {
			if gap := event.Start.Sub(window.End); gap < after {
				after = gap
			}
		}
	}
	return (float64(before)/float64(f.config.MinBuffer) +
		float64(after)/float64(f.config.MinBuffer)) / 2
}

// fallback hands the conflict to the external reasoning collaborator and
// re-validates its answer against working-hour constraints.
func (f *SlotFinder) fallback(
	ctx context.Context,
	eventTitle string,
	preferred time.Time,
	durationMinutes int,
	busy []domain.BusyEvent,
	cons SlotConstraints,
	started time.Time,
) domain.SchedulingResult {
	if f.reasoning == nil {
		return f.failure(eventTitle, "no available window and no reasoning fallback configured", started)
	}

	proposal, err := f.reasoning.ProposeSlot(ctx, ReasoningRequest{
		EventTitle:      eventTitle,
		PreferredStart:  preferred,
		DurationMinutes: durationMinutes,
		BusySlots:       busy,
		Constraints:     cons,
	})
	if err != nil {
		f.logger.Warn("reasoning fallback failed", "event", eventTitle, "error", err)
		return f.failure(eventTitle, "reasoning fallback failed: "+err.Error(), started)
	}

	window := domain.TimeRange{
		Start: proposal.NewStart,
		End:   proposal.NewStart.Add(time.Duration(durationMinutes) * time.Minute),
	}
	if !f.validProposal(window, proposal, cons) {
		f.logger.Warn("reasoning fallback proposed an out-of-bounds slot",
			"event", eventTitle, "proposed_start", proposal.NewStart)
		return f.failure(eventTitle, "reasoning fallback proposed an out-of-bounds slot", started)
	}

	reasoning := proposal.Reasoning
	if proposal.MovedEventID != "" {
		reasoning = fmt.Sprintf("%s (shifts event %s by %d minutes)",
			reasoning, proposal.MovedEventID, proposal.ShiftMinutes)
	}
	return f.success(eventTitle, window, 0.6, MethodAIFallback, reasoning, nil, started)
}

// validProposal checks the untrusted proposal: inside working hours and
// any block shift within the allowed bound.
func (f *SlotFinder) validProposal(window domain.TimeRange, proposal *ReasoningProposal, cons SlotConstraints) bool {
	if !window.IsValid() {
		return false
	}
	if proposal.MovedEventID != "" &&
		(proposal.ShiftMinutes < -maxFallbackShift || proposal.ShiftMinutes > maxFallbackShift) {
		return false
	}
	hard := domain.HardConstraints{
		WorkDayStartMinute: cons.WorkDayStartMinute,
		WorkDayEndMinute:   cons.WorkDayEndMinute,
	}
	if hard.WorkDayEndMinute <= hard.WorkDayStartMinute {
		hard.WorkDayStartMinute = 9 * 60
		hard.WorkDayEndMinute = 17 * 60
	}
	return hard.WithinWorkHours(window)
}

func (f *SlotFinder) success(
	eventTitle string,
	window domain.TimeRange,
	score float64,
	method, reasoning string,
	alternatives []domain.SlotCandidate,
	started time.Time,
) domain.SchedulingResult {
	block := domain.ScheduleBlock{
		TaskID:                eventTitle,
		Title:                 eventTitle,
		TimeRange:             window,
		UtilityScore:          score,
		CompletionProbability: completionProbability(score),
	}
	f.logger.Info("slot found",
		"event", eventTitle, "method", method,
		"start", window.Start, "score", score)
	return domain.SchedulingResult{
		Success:      true,
		Schedule:     []domain.ScheduleBlock{block},
		Confidence:   score,
		Method:       method,
		Alternatives: alternatives,
		OverallExplanation: fmt.Sprintf("Placed %q at %s via %s: %s.",
			eventTitle, window.Start.Format("Mon 15:04"), method, reasoning),
		Metrics: domain.RunMetrics{
			TasksConsidered: 1,
			Scheduled:       1,
			Elapsed:         time.Since(started),
		},
	}
}

func (f *SlotFinder) failure(eventTitle, message string, started time.Time) domain.SchedulingResult {
	return domain.SchedulingResult{
		Success:            false,
		Confidence:         0,
		Method:             MethodError,
		OverallExplanation: fmt.Sprintf("Could not place %q: %s.", eventTitle, message),
		UnscheduledTasks:   []string{eventTitle},
		Metrics: domain.RunMetrics{
			TasksConsidered: 1,
			Unscheduled:     1,
			Elapsed:         time.Since(started),
		},
	}
}

// overlapsAny checks a window against every busy event.
func overlapsAny(window domain.TimeRange, busy []domain.BusyEvent) bool {
	for _, event := range busy {
		if window.Overlaps(event.TimeRange) {
			return true
		}
	}
	return false
}

// alignUp rounds a time up to the next step boundary.
func alignUp(t time.Time, step time.Duration) time.Time {
	aligned := t.Truncate(step)
	if aligned.Before(t) {
		aligned = aligned.Add(step)
	}
	return aligned
}

// timeOfDayMatch scores a candidate hour against explicit morning or
// afternoon preference flags. No flag is neutral.
func timeOfDayMatch(hour int, cons SlotConstraints) float64 {
	switch {
	case !cons.PreferMorning && !cons.PreferAfternoon:
		return 0.5
	case cons.PreferMorning && hour < 12:
		return 1.0
	case cons.PreferAfternoon && hour >= 12:
		return 1.0
	default:
		return 0
	}
}

// productivityScore peaks during core working hours with shoulders on
// either side.
func productivityScore(hour int) float64 {
	switch {
	case hour >= 9 && hour < 17:
		return 1.0
	case hour >= 7 && hour < 9, hour >= 17 && hour < 19:
		return 0.7
	default:
		return 0.3
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
