package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/config"
	"tableflip.dev/newday/pkg/remote"
	"tableflip.dev/newday/pkg/replica"
	"tableflip.dev/newday/pkg/state"
)

const readyTimeout = 10 * time.Second

func logger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// withService opens the configured store, syncs the configured user and runs
// fn once the first snapshots are in.
func withService(ctx context.Context, fn func(ctx context.Context, svc *app.Service) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := remote.Open(cfg.BasePath())
	if err != nil {
		return err
	}

	log := logger()
	rep := replica.New(store, state.New(), replica.WithLogger(log))
	if err := rep.Start(ctx, cfg.UserID()); err != nil {
		return err
	}
	defer rep.Stop()

	rctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	if err := rep.Ready(rctx); err != nil {
		return fmt.Errorf("waiting for %s: %w", cfg.BasePath(), err)
	}
	log.Debug("session ready", "user", cfg.UserID(), "path", cfg.BasePath())

	svc := app.New(store, rep)
	svc.SeedPlaceholders = cfg.SeedPlaceholders()
	return fn(ctx, svc)
}
