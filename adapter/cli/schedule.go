package cli

import (
	"github.com/spf13/cobra"
)

func newScheduleCommand(app *App) *cobra.Command {
	var (
		tasksPath        string
		availabilityPath string
		preferencesPath  string
		preview          bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Place a task batch into available calendar windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := loadTasks(tasksPath, app.Logger)
			if err != nil {
				return err
			}
			availability, err := loadAvailability(availabilityPath)
			if err != nil {
				return err
			}
			prefs, err := loadPreferences(preferencesPath)
			if err != nil {
				return err
			}

			result := app.Placement.ScheduleTasks(cmd.Context(), tasks, availability, prefs, preview)
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&tasksPath, "tasks", "", "path to the task batch (JSON)")
	cmd.Flags().StringVar(&availabilityPath, "availability", "", "path to free windows (JSON)")
	cmd.Flags().StringVar(&preferencesPath, "preferences", "", "path to preferences (JSON or YAML)")
	cmd.Flags().BoolVar(&preview, "preview", false, "compute without committing")
	cmd.MarkFlagRequired("tasks")
	cmd.MarkFlagRequired("availability")
	return cmd
}
