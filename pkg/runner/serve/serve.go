// Package serve provides the runner for the task ingestion API.
package serve

import (
	"context"
	"log/slog"

	"tableflip.dev/newday/pkg/ingest"
	"tableflip.dev/newday/pkg/remote"
)

type Serve struct {
	Store   remote.Store
	Addr    string
	Origins []string
	Logger  *slog.Logger
}

// Do serves until ctx is cancelled.
func (s *Serve) Do(ctx context.Context) error {
	srv := ingest.NewServer(s.Store, ingest.Options{
		Origins: s.Origins,
		Logger:  s.Logger,
	})
	return srv.Run(ctx, s.Addr)
}
