package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/duoledger/internal/storage/sqlite"
)

func newMigrateCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.Open(g.cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			applied, err := store.Migrator().EnsureSchema(cmd.Context(), sqlite.SchemaVersion)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintf(out, "Schema is up to date (version %d)\n", sqlite.SchemaVersion)
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(out, "Applied migration %d\n", v)
			}
			fmt.Fprintf(out, "Schema is now at version %d\n", sqlite.SchemaVersion)
			return nil
		},
	}
}
