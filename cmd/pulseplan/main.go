package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flyonthewallai/pulseplan/adapter/cli"
	"github.com/flyonthewallai/pulseplan/pkg/config"
	"github.com/flyonthewallai/pulseplan/pkg/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		cfg = &config.Config{AppEnv: "development", LogLevel: "info"}
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	if !cfg.IsDevelopment() {
		logCfg.Format = observability.LogFormatJSON
	}
	logger := observability.NewLogger(logCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	app := cli.NewApp(cfg, logger)
	root := cli.NewRootCommand(app)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
