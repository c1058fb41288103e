package commands

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/duoledger/internal/syncclient"
	"github.com/mmynk/duoledger/internal/syncserver"
)

func newSyncCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Talk to the sync server",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check connectivity and show the server's last sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			ch, err := a.Sync.CheckConnectivity(cmd.Context())
			if err != nil {
				return err
			}
			status := <-ch
			printStatus(out, status)
			if status.State != syncclient.Online {
				return nil
			}

			ch, err = a.Sync.FetchLastSync(cmd.Context())
			if err != nil {
				return err
			}
			status = <-ch
			switch {
			case status.State != syncclient.Online:
				printStatus(out, status)
			case !status.HasSynced:
				fmt.Fprintln(out, "The server has no uploaded data yet")
			default:
				fmt.Fprintf(out, "Last sync: version %d at %s\n",
					status.LastSyncVersion, status.LastSyncAt.Local().Format(time.DateTime))
			}
			return nil
		},
	})

	return cmd
}

func printStatus(out io.Writer, status syncclient.Status) {
	switch status.State {
	case syncclient.Online:
		fmt.Fprintln(out, "Online")
	case syncclient.Unauthenticated:
		fmt.Fprintln(out, "No sync token configured, set one with 'settings set sync_token <token>'")
	case syncclient.Unauthorized:
		fmt.Fprintln(out, "The server rejected the sync token")
	default:
		if status.Err != nil {
			fmt.Fprintf(out, "Offline: %v\n", status.Err)
			return
		}
		fmt.Fprintln(out, "Offline")
	}
}

func newServeCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the sync server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return syncserver.Run(ctx, syncserver.Options{
				Addr:    g.cfg.ServerAddr,
				DataDir: g.cfg.ServerDataDir,
				Token:   g.cfg.ServerToken,
			})
		},
	}
}
