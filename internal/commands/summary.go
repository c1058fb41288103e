package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/duoledger/internal/calculator"
)

func newSummaryCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show total spent and the balance with your friend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.Ledger.Summary(cmd.Context())
			if err != nil {
				return err
			}

			debt := summary.Totals.Debt
			balance := "You and your friend are even"
			switch {
			case debt.IsPositive():
				balance = fmt.Sprintf("You owe your friend %s", calculator.Display(debt))
			case debt.IsNegative():
				balance = fmt.Sprintf("Your friend owes you %s", calculator.Display(debt.Neg()))
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Payments:\t%d\n", len(summary.Payments))
			fmt.Fprintf(w, "Spent:\t%s\t(%s foreign)\n",
				calculator.Display(summary.Totals.Spent), calculator.Display(summary.SpentForeign))
			fmt.Fprintf(w, "Debt:\t%s\t(%s foreign)\n",
				calculator.Display(debt), calculator.Display(summary.DebtForeign))
			fmt.Fprintf(w, "Rate:\t%s\n", summary.Rate)
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), balance)
			return nil
		},
	}
}
