package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flyonthewallai/pulseplan/internal/scheduling/domain"
)

// taskSnapshot is the wire shape of a task fixture. Dates arrive as
// strings and parse leniently: a malformed due date degrades to no due
// date instead of failing the batch.
type taskSnapshot struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Type             string `json:"type"`
	Priority         string `json:"priority"`
	DueDate          string `json:"due_date"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

func loadTasks(path string, logger *slog.Logger) ([]domain.Task, error) {
	var snapshots []taskSnapshot
	if err := decodeFile(path, &snapshots); err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(snapshots))
	for _, s := range snapshots {
		task := domain.Task{
			ID:               s.ID,
			Title:            s.Title,
			Type:             s.Type,
			Priority:         domain.ParsePriority(s.Priority),
			EstimatedMinutes: s.EstimatedMinutes,
		}
		if s.DueDate != "" {
			if due, ok := parseFlexibleTime(s.DueDate); ok {
				task.DueDate = &due
			} else {
				logger.Warn("ignoring malformed due date",
					"task_id", s.ID, "due_date", s.DueDate)
			}
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func loadAvailability(path string) ([]domain.TimeRange, error) {
	var windows []domain.TimeRange
	if err := decodeFile(path, &windows); err != nil {
		return nil, err
	}
	return windows, nil
}

func loadBlocks(path string) ([]domain.ScheduleBlock, error) {
	var blocks []domain.ScheduleBlock
	if err := decodeFile(path, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func loadBusyEvents(path string) ([]domain.BusyEvent, error) {
	var events []domain.BusyEvent
	if err := decodeFile(path, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func loadPreferences(path string) (domain.Preferences, error) {
	if path == "" {
		return domain.DefaultPreferences(), nil
	}
	var prefs domain.Preferences
	if err := decodeFile(path, &prefs); err != nil {
		return domain.Preferences{}, err
	}
	return prefs.Normalize(), nil
}

// decodeFile unmarshals a JSON or YAML fixture based on its extension.
func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return nil
}

// parseFlexibleTime accepts RFC3339 timestamps or plain dates.
func parseFlexibleTime(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// printJSON writes a result to stdout for consumption by other tools.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
