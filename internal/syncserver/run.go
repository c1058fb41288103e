package syncserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mmynk/duoledger/internal/auth"
	"github.com/mmynk/duoledger/internal/metrics"
)

// Options configures Run.
type Options struct {
	Addr    string
	DataDir string
	// Token is the shared sync token. When empty one is generated and logged once.
	Token string
}

// Run starts the remote authority and blocks until ctx is done.
func Run(ctx context.Context, opts Options) error {
	token, generated, err := ResolveToken(opts.Token)
	if err != nil {
		return err
	}
	if generated {
		slog.Warn("PIA_TOKEN not set, generated a sync token", "token", token)
	}

	verifier, err := auth.NewTokenVerifier(token)
	if err != nil {
		return err
	}

	files, err := NewFileStore(opts.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize sync data: %w", err)
	}
	slog.Info("Sync data initialized", "dir", opts.DataDir)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := New(files, verifier, metrics.NewServer(reg), reg)
	return ListenAndServe(ctx, opts.Addr, srv.Handler())
}
