package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/flyonthewallai/pulseplan/internal/scheduling/domain"
)

// Factor weights for the multi-factor task score.
const (
	priorityWeight = 0.4
	urgencyWeight  = 0.3
	typeWeight     = 0.2
	effortWeight   = 0.1
)

// PrioritizedTask pairs a task with its computed priority score.
type PrioritizedTask struct {
	Task  domain.Task
	Score float64
}

// PrioritizeTasks orders a task batch by a weighted multi-factor score,
// highest first. Ties keep input order (stable sort). Every score is
// recorded in the decision log with its four sub-factors.
func PrioritizeTasks(
	tasks []domain.Task,
	prefs domain.Preferences,
	now time.Time,
	log *domain.DecisionLog,
) []PrioritizedTask {
	scored := make([]PrioritizedTask, 0, len(tasks))
	for _, task := range tasks {
		score, factors := scoreTask(task, prefs, now)
		scored = append(scored, PrioritizedTask{Task: task, Score: score})
		log.Record(domain.DecisionEntry{
			Stage:   "prioritize",
			TaskID:  task.ID,
			Score:   score,
			Factors: factors,
			Note:    fmt.Sprintf("priority=%s due_urgency=%.2f", task.Priority, factors["due_urgency"]),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// scoreTask computes the weighted priority score and its sub-factors.
func scoreTask(task domain.Task, prefs domain.Preferences, now time.Time) (float64, map[string]float64) {
	base := float64(task.Priority.Weight())
	urgency := dueUrgency(task.DueDate, now)
	typePref := prefs.Weights.Get(task.Type)
	effort := effortFactor(task.EstimatedMinutes)

	score := priorityWeight*base +
		urgencyWeight*urgency +
		typeWeight*typePref +
		effortWeight*effort

	return score, map[string]float64{
		"base_priority":   base,
		"due_urgency":     urgency,
		"type_preference": typePref,
		"effort_factor":   effort,
	}
}

// dueUrgency maps time-to-deadline into a pressure factor. Tasks with no
// due date sit at the neutral midpoint.
func dueUrgency(due *time.Time, now time.Time) float64 {
	if due == nil {
		return 0.5
	}
	remaining := due.Sub(now)
	switch {
	case remaining <= 0:
		return 1.0
	case remaining <= 24*time.Hour:
		return 0.9
	case remaining <= 3*24*time.Hour:
		return 0.7
	case remaining <= 7*24*time.Hour:
		return 0.5
	default:
		return 0.3
	}
}

// effortFactor rewards tasks whose length packs well into a working day.
func effortFactor(estimatedMinutes int) float64 {
	switch {
	case estimatedMinutes <= 30:
		return 0.8
	case estimatedMinutes <= 90:
		return 1.0
	case estimatedMinutes <= 180:
		return 0.6
	default:
		return 0.4
	}
}
