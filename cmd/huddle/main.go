package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/huddle/adapter/cli"
	cliAuth "github.com/felixgeelhaar/huddle/adapter/cli/auth"
	"github.com/felixgeelhaar/huddle/adapter/cli/dashboard"
	"github.com/felixgeelhaar/huddle/adapter/cli/meeting"
	cliSettings "github.com/felixgeelhaar/huddle/adapter/cli/settings"
	"github.com/felixgeelhaar/huddle/adapter/cli/users"
	"github.com/felixgeelhaar/huddle/internal/app"
	"github.com/felixgeelhaar/huddle/pkg/config"
	"github.com/felixgeelhaar/huddle/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	// Setup logger
	level := new(slog.LevelVar)
	logCfg := observability.DefaultLogConfig()
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.Format = observability.LogFormat(cfg.LogFormat)
	logCfg.LevelVar = level
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)
	cli.SetLogLevel(level)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsProduction() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// Commands report ErrNotConfigured when they need the container.
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		cli.SetApp(cli.NewApp(container))
	}

	// Register commands
	cli.AddCommand(meeting.Cmd)
	cli.AddCommand(users.Cmd)
	cli.AddCommand(cliSettings.Cmd)
	cli.AddCommand(cliAuth.Cmd)
	cli.AddCommand(dashboard.Cmd)

	// Execute CLI
	code := cli.Execute(ctx)
	if container != nil {
		container.Close()
	}
	cancel()
	os.Exit(code)
}
