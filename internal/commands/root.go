package commands

import (
	"github.com/spf13/cobra"

	"github.com/mmynk/duoledger/internal/app"
	"github.com/mmynk/duoledger/internal/buildinfo"
	"github.com/mmynk/duoledger/internal/config"
	"github.com/mmynk/duoledger/pkg/logging"
)

// globals is shared by every subcommand once the root pre-run has loaded it.
type globals struct {
	dbPath string
	cfg    *config.Config
}

// openApp opens the core over the configured database.
func (g *globals) openApp() (*app.App, error) {
	return app.Open(g.cfg, nil)
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "duoledger",
		Short:   "Shared expense ledger for two",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if g.dbPath != "" {
				cfg.DBPath = g.dbPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := logging.Setup(cfg.LogLevel); err != nil {
				return err
			}
			g.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.dbPath, "db", "", "database path (overrides DB_PATH)")

	rootCmd.AddCommand(
		newPaymentsCommand(g),
		newSummaryCommand(g),
		newSettingsCommand(g),
		newSyncCommand(g),
		newMigrateCommand(g),
		newServeCommand(g),
	)

	return rootCmd
}
