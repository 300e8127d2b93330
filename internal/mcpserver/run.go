package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"itemqueue/internal/config"
	"itemqueue/internal/logging"
	"itemqueue/internal/preflight"
	"itemqueue/internal/queue"
)

// Options configures server process runtime behavior.
type Options struct {
	LogLevel      string
	SkipPreflight bool
}

// Run starts the tool server on stdio and blocks until it stops.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	if !opts.SkipPreflight {
		results := preflight.RunAll(signalCtx, cfg)
		for _, r := range results {
			level := slog.LevelInfo
			if !r.Passed {
				level = slog.LevelError
			}
			logger.Log(signalCtx, level, "preflight check",
				slog.String("check", r.Name),
				slog.Bool("passed", r.Passed),
				slog.String("detail", r.Detail),
			)
		}
		if preflight.AnyFailed(results) {
			return fmt.Errorf("preflight failed: %s", failedNames(results))
		}
	}

	manager, err := queue.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create queue: %w", err)
	}
	defer manager.Close()

	server, err := New(cfg, manager, logger)
	if err != nil {
		return err
	}
	return server.Serve(signalCtx)
}

func failedNames(results []preflight.Result) string {
	var names []string
	for _, r := range results {
		if !r.Passed {
			names = append(names, r.Name)
		}
	}
	return strings.Join(names, ", ")
}
