package cli

import (
	"github.com/spf13/cobra"

	"github.com/flyonthewallai/pulseplan/internal/scheduling/domain"
)

func newReplanCommand(app *App) *cobra.Command {
	var (
		blocksPath      string
		busyPath        string
		preferencesPath string
		scopeRaw        string
		protectedIDs    []string
	)

	cmd := &cobra.Command{
		Use:   "replan",
		Short: "Analyze how far an existing schedule may be reshuffled",
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := loadBlocks(blocksPath)
			if err != nil {
				return err
			}

			var busy []domain.BusyEvent
			if busyPath != "" {
				if busy, err = loadBusyEvents(busyPath); err != nil {
					return err
				}
			}
			prefs, err := loadPreferences(preferencesPath)
			if err != nil {
				return err
			}
			scope, err := domain.ParseReplanScope(scopeRaw)
			if err != nil {
				return err
			}

			var custom *domain.ReplanConstraint
			if len(protectedIDs) > 0 {
				protected := make(map[string]bool, len(protectedIDs))
				for _, id := range protectedIDs {
					protected[id] = true
				}
				custom = &domain.ReplanConstraint{ProtectedTaskIDs: protected}
			}

			result := app.Replanner.AnalyzeReplanningScope(blocks, nil, busy, prefs, scope, custom)
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&blocksPath, "blocks", "", "path to the committed schedule (JSON)")
	cmd.Flags().StringVar(&busyPath, "busy", "", "path to busy events (JSON)")
	cmd.Flags().StringVar(&preferencesPath, "preferences", "", "path to preferences (JSON or YAML)")
	cmd.Flags().StringVar(&scopeRaw, "scope", "moderate", "replanning scope (minimal|moderate|aggressive|complete)")
	cmd.Flags().StringSliceVar(&protectedIDs, "protect", nil, "task ids that must not move")
	cmd.MarkFlagRequired("blocks")
	return cmd
}
