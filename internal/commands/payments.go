package commands

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/duoledger/internal/calculator"
	"github.com/mmynk/duoledger/internal/models"
	"github.com/mmynk/duoledger/internal/service"
)

// dateLayouts are accepted by --date, most specific first.
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04", time.DateOnly}

type paymentFlags struct {
	title  string
	amount string
	typ    string
	date   string
}

func (f *paymentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "what the payment was for")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount in home currency, e.g. 12.50")
	cmd.Flags().StringVar(&f.typ, "type", "", "payment type (see 'payments types')")
	cmd.Flags().StringVar(&f.date, "date", "", "when it happened: YYYY-MM-DD, 'YYYY-MM-DD HH:MM' or RFC 3339 (default now)")
}

// apply overwrites in with every flag the user set.
func (f *paymentFlags) apply(cmd *cobra.Command, in *service.PaymentInput) error {
	flags := cmd.Flags()
	if flags.Changed("title") {
		in.Title = f.title
	}
	if flags.Changed("amount") {
		amount, err := models.ParseAmount(f.amount)
		if err != nil {
			return err
		}
		in.Amount = amount
	}
	if flags.Changed("type") {
		typ, err := models.ParsePaymentType(f.typ)
		if err != nil {
			return err
		}
		in.Type = typ
	}
	if flags.Changed("date") {
		at, err := parseDate(f.date)
		if err != nil {
			return err
		}
		in.OccurredAt = at
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, models.NewValidationError("occurred_at", fmt.Sprintf("cannot parse date %q", s))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("id", fmt.Sprintf("%q is not a payment id", s))
	}
	return id, nil
}

func newPaymentsCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payments",
		Aliases: []string{"p"},
		Short:   "Record and inspect payments",
	}
	cmd.AddCommand(
		newPaymentsAddCommand(g),
		newPaymentsUpdateCommand(g),
		newPaymentsDeleteCommand(g),
		newPaymentsListCommand(g),
		newPaymentsTypesCommand(),
	)
	return cmd
}

func newPaymentsAddCommand(g *globals) *cobra.Command {
	var f paymentFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := service.PaymentInput{Type: models.PaymentUser, OccurredAt: time.Now()}
			if err := f.apply(cmd, &in); err != nil {
				return err
			}

			a, err := g.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			payment, err := a.Ledger.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added payment %d\n", payment.ID)
			return nil
		},
	}

	f.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newPaymentsUpdateCommand(g *globals) *cobra.Command {
	var f paymentFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an existing payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := g.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			current, err := a.Ledger.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			in := service.PaymentInput{
				Title:      current.Title,
				Amount:     current.Amount,
				Type:       current.Type,
				OccurredAt: current.OccurredAt,
			}
			if err := f.apply(cmd, &in); err != nil {
				return err
			}

			if _, err := a.Ledger.Update(cmd.Context(), id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated payment %d\n", id)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func newPaymentsDeleteCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := g.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Ledger.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted payment %d\n", id)
			return nil
		},
	}
}

func newPaymentsListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List payments, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			payments, err := a.Ledger.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(payments) == 0 {
				fmt.Fprintln(out, "No payments recorded")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\tTITLE")
			for _, p := range payments {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					p.ID,
					p.OccurredAt.Local().Format("2006-01-02 15:04"),
					p.Type,
					calculator.Display(p.Amount),
					p.Title,
				)
			}
			return w.Flush()
		},
	}
}

func newPaymentsTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Show the payment types",
		Args:  cobra.NoArgs,
		// The listing is static and needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tDESCRIPTION\tSPENT\tDEBT")
			for _, t := range models.PaymentTypes() {
				info := t.Info()
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, info.Label, info.SpendFactor, info.DebtFactor)
			}
			return w.Flush()
		},
	}
}
