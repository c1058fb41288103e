// Package app wires the ledger core into one object that hosts (the CLI,
// tests) hold instead of owning state themselves.
package app

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/duoledger/internal/config"
	"github.com/mmynk/duoledger/internal/metrics"
	"github.com/mmynk/duoledger/internal/service"
	"github.com/mmynk/duoledger/internal/storage/sqlite"
	"github.com/mmynk/duoledger/internal/syncclient"
)

// App holds the ledger, the configuration store and the sync client over
// one migrated database.
type App struct {
	Ledger   *service.LedgerService
	Settings *service.SettingsService
	Sync     *syncclient.Client

	store *sqlite.SQLiteStore
}

// Open migrates the database at cfg.DBPath and builds the services.
// Sync metrics are registered with reg; nil leaves them unregistered.
func Open(cfg *config.Config, reg prometheus.Registerer) (*App, error) {
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Debug("Storage initialized", "database", cfg.DBPath)

	settings := service.NewSettingsService(store)
	client, err := syncclient.New(settings, syncclient.Options{
		BaseURL:  cfg.SyncBaseURL,
		Cooldown: cfg.SyncCooldown,
		Timeout:  cfg.SyncTimeout,
		Metrics:  metrics.NewClient(reg),
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	return &App{
		Ledger:   service.NewLedgerService(store, settings),
		Settings: settings,
		Sync:     client,
		store:    store,
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.store.Close()
}
