package cmd

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"invoicer/internal/store"
	"invoicer/pkg/models"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize invoice counts and amounts",
	Long: `Summarize invoice counts and amounts.

Past-due unpaid invoices are first moved to overdue and saved, so an invoice
reported overdue once stays overdue.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List overdue invoices after saving their overdue status",
	Args:  cobra.NoArgs,
	RunE:  runOverdue,
}

var recurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Work with recurring invoices",
}

var recurringRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Issue every recurring invoice that is due today",
	Args:  cobra.NoArgs,
	RunE:  runRecurring,
}

func init() {
	rootCmd.AddCommand(statsCmd, overdueCmd, recurringCmd)
	recurringCmd.AddCommand(recurringRunCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	return withStore("stats", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		moved, err := s.AdvanceOverdue(ctx)
		if err != nil {
			return err
		}
		stats, err := s.InvoiceStats(ctx)
		if err != nil {
			return err
		}

		log.Debug().
			Int("moved_overdue", moved).
			Int("total", stats.Total).
			Msg("Computed invoice stats")

		if jsonOutput(cmd) {
			return outputJSON(cmd, stats)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Invoices:        %d\n", stats.Total)
		fmt.Fprintf(out, "Unpaid:          %d (%d due soon)\n", stats.Unpaid, stats.DueSoon)
		fmt.Fprintf(out, "Overdue:         %d\n", stats.Overdue)
		fmt.Fprintf(out, "Paid:            %d\n", stats.Paid)
		fmt.Fprintf(out, "Outstanding:     %s\n", stats.Outstanding.StringFixed(models.MoneyPlaces))
		fmt.Fprintf(out, "Paid this month: %s\n", stats.PaidThisMonth.StringFixed(models.MoneyPlaces))
		return nil
	})
}

func runOverdue(cmd *cobra.Command, args []string) error {
	return withStore("overdue", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		if _, err := s.AdvanceOverdue(ctx); err != nil {
			return err
		}
		invoices, err := s.Invoices(ctx)
		if err != nil {
			return err
		}

		today := civil.DateOf(nowFunc())
		rows := []invoiceRow{}
		for i := range invoices {
			if st := invoices[i].DisplayStatus(today); st == models.StatusOverdue {
				rows = append(rows, invoiceRow{Invoice: &invoices[i], Display: st})
			}
		}
		if jsonOutput(cmd) {
			out := make([]models.Invoice, len(rows))
			for i, r := range rows {
				out[i] = *r.Invoice
			}
			return outputJSON(cmd, out)
		}
		return printInvoiceTable(cmd, rows)
	})
}

func runRecurring(cmd *cobra.Command, args []string) error {
	return withStore("recurring", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		generated, err := s.GenerateRecurring(ctx)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return outputJSON(cmd, generated)
		}
		if len(generated) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recurring invoices are due.")
			return nil
		}
		for _, inv := range generated {
			fmt.Fprintf(cmd.OutOrStdout(), "Issued %s for %s, due %s\n",
				inv.ID, inv.Totals.Grand.StringFixed(models.MoneyPlaces), inv.DueDate)
		}
		return nil
	})
}
