package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flyonthewallai/pulseplan/internal/scheduling/application/services"
	"github.com/flyonthewallai/pulseplan/internal/scheduling/domain"
)

func newSlotCommand(app *App) *cobra.Command {
	var (
		atRaw           string
		duration        int
		title           string
		busyPath        string
		preferMorning   bool
		preferAfternoon bool
	)

	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Find the best window for a single event near a preferred time",
		RunE: func(cmd *cobra.Command, args []string) error {
			preferred, ok := parseFlexibleTime(atRaw)
			if !ok {
				return fmt.Errorf("invalid --at value %q", atRaw)
			}

			var busy []domain.BusyEvent
			if busyPath != "" {
				var err error
				if busy, err = loadBusyEvents(busyPath); err != nil {
					return err
				}
			}

			constraints := &services.SlotConstraints{
				PreferMorning:      preferMorning,
				PreferAfternoon:    preferAfternoon,
				WorkDayStartMinute: app.Config.WorkDayStartMinute,
				WorkDayEndMinute:   app.Config.WorkDayEndMinute,
			}

			finder := app.SlotFinder(busy)
			result := finder.FindOptimalSlot(cmd.Context(), preferred, duration, title, constraints)
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&atRaw, "at", "", "preferred start time (RFC3339 or YYYY-MM-DDTHH:MM)")
	cmd.Flags().IntVar(&duration, "duration", 60, "event duration in minutes")
	cmd.Flags().StringVar(&title, "title", "Event", "event title")
	cmd.Flags().StringVar(&busyPath, "busy", "", "path to busy events (JSON)")
	cmd.Flags().BoolVar(&preferMorning, "prefer-morning", false, "prefer morning slots")
	cmd.Flags().BoolVar(&preferAfternoon, "prefer-afternoon", false, "prefer afternoon slots")
	cmd.MarkFlagRequired("at")
	return cmd
}
