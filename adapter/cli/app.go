// Package cli provides the pulseplan command-line interface.
package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/flyonthewallai/pulseplan/internal/scheduling/application/services"
	"github.com/flyonthewallai/pulseplan/internal/scheduling/domain"
	"github.com/flyonthewallai/pulseplan/internal/scheduling/infrastructure/reasoning"
	"github.com/flyonthewallai/pulseplan/pkg/config"
)

// App holds the CLI application dependencies.
type App struct {
	Placement *services.PlacementEngine
	Replanner *services.ScopeController
	Config    *config.Config
	Logger    *slog.Logger

	reasoningSvc services.ReasoningService
}

// NewApp wires the engines from configuration.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	placementCfg := services.DefaultPlacementConfig()
	if cfg.SlotStepMinutes > 0 {
		placementCfg.SlotStep = time.Duration(cfg.SlotStepMinutes) * time.Minute
	}

	var reasoningSvc services.ReasoningService
	if cfg.ReasoningURL != "" {
		clientCfg := reasoning.DefaultConfig(cfg.ReasoningURL)
		clientCfg.Timeout = cfg.ReasoningTimeout
		clientCfg.FailureThreshold = uint32(cfg.ReasoningFailureThreshold)
		reasoningSvc = reasoning.NewClient(clientCfg, logger)
	}

	return &App{
		Placement:    services.NewPlacementEngine(placementCfg, logger),
		Replanner:    services.NewScopeController(logger),
		Config:       cfg,
		Logger:       logger,
		reasoningSvc: reasoningSvc,
	}
}

// SlotFinder builds a single-event finder over an in-memory busy snapshot.
func (a *App) SlotFinder(busy []domain.BusyEvent) *services.SlotFinder {
	return services.NewSlotFinder(
		services.DefaultSlotFinderConfig(),
		services.StaticBusyLoader(busy),
		a.reasoningSvc,
		a.Logger,
	)
}

// NewRootCommand builds the pulseplan command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "pulseplan",
		Short:         "Explainable calendar scheduling for tasks and events",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScheduleCommand(app))
	root.AddCommand(newReplanCommand(app))
	root.AddCommand(newSlotCommand(app))
	return root
}
