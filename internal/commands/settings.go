package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/duoledger/internal/service"
)

func newSettingsCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "get [key]",
		Short:     "Show one setting, or all of them",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: service.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			keys := service.Keys()
			if len(args) == 1 {
				keys = args
			}
			for _, key := range keys {
				value, ok, err := a.Settings.Get(cmd.Context(), key)
				if err != nil {
					return err
				}
				switch {
				case !ok:
					value = "(not set)"
				case key == service.KeySyncToken:
					value = "(set)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change a setting",
		Args:      cobra.ExactArgs(2),
		ValidArgs: service.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Settings.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", args[0])
			return nil
		},
	})

	return cmd
}
