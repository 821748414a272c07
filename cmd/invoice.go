package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"invoicer/internal/store"
	"invoicer/pkg/models"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Create, list and manage invoices",
	Long: `Create, list and manage invoices.

Line items are given as "description:qty:unit-price[:tax-rate[:discount-rate]]".
Rates are percentages between 0 and 100. Amounts are computed per item with
half-away-from-zero rounding to the cent, then summed.`,
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new invoice",
	Example: `  # Two items, default terms from settings
  invoicer invoice create --client 3f2a... --item "Consulting:2:100:12:10" --item "Travel:1:80"

  # Custom terms, shipping and a monthly schedule
  invoicer invoice create --client 3f2a... --item "Hosting:1:40" --terms "Net 15" \
    --shipping 5 --recurring monthly`,
	Args: cobra.NoArgs,
	RunE: runInvoiceCreate,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List invoices, optionally filtered by a search query",
	Long: `List invoices. The optional query matches the invoice number, the client
name or company, and the notes, ignoring case.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInvoiceList,
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show <number>",
	Short: "Show an invoice with its line items",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceShow,
}

var invoiceUpdateCmd = &cobra.Command{
	Use:   "update <number>",
	Short: "Edit an existing invoice",
	Example: `  invoicer invoice update INV-202403-001 --notes "Thank you" --add-item "Support:3:25"
  invoicer invoice update INV-202403-001 --remove-item 9b1c... --shipping 0`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoiceUpdate,
}

var invoicePayCmd = &cobra.Command{
	Use:   "pay <number>",
	Short: "Mark an invoice as paid",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicePay,
}

var invoiceDuplicateCmd = &cobra.Command{
	Use:   "duplicate <number>",
	Short: "Reissue an invoice today under a new number",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceDuplicate,
}

var invoiceDeleteCmd = &cobra.Command{
	Use:   "delete <number>",
	Short: "Delete an invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceDelete,
}

var invoiceNextNumberCmd = &cobra.Command{
	Use:   "next-number",
	Short: "Preview the number the next invoice will get",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceNextNumber,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceCreateCmd, invoiceListCmd, invoiceShowCmd, invoiceUpdateCmd,
		invoicePayCmd, invoiceDuplicateCmd, invoiceDeleteCmd, invoiceNextNumberCmd)

	f := invoiceCreateCmd.Flags()
	f.String("client", "", "Client ID (required)")
	f.StringArray("item", nil, `Line item "description:qty:price[:tax[:discount]]" (repeatable)`)
	f.String("terms", "", "Payment terms, e.g. \"Net 15\" (default: settings default terms)")
	f.String("issue-date", "", "Issue date YYYY-MM-DD (default: today)")
	f.String("shipping", "0", "Shipping amount")
	f.String("notes", "", "Free-form notes")
	f.String("recurring", "", "Reissue interval: weekly, monthly, quarterly or yearly")
	_ = invoiceCreateCmd.MarkFlagRequired("client")

	invoiceListCmd.Flags().String("status", "", "Only show invoices with this status (unpaid, due-soon, overdue, paid)")

	u := invoiceUpdateCmd.Flags()
	u.String("client", "", "New client ID")
	u.String("terms", "", "New payment terms; the due date is recomputed")
	u.String("due-date", "", "Explicit due date YYYY-MM-DD")
	u.String("shipping", "", "New shipping amount")
	u.String("notes", "", "New notes")
	u.StringArray("add-item", nil, "Append a line item (repeatable)")
	u.StringArray("remove-item", nil, "Remove the line item with this ID (repeatable)")
}

func runInvoiceCreate(cmd *cobra.Command, args []string) error {
	return withStore("invoice", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		clientID, _ := cmd.Flags().GetString("client")
		specs, _ := cmd.Flags().GetStringArray("item")
		terms, _ := cmd.Flags().GetString("terms")
		issueStr, _ := cmd.Flags().GetString("issue-date")
		shippingStr, _ := cmd.Flags().GetString("shipping")
		notes, _ := cmd.Flags().GetString("notes")
		interval, _ := cmd.Flags().GetString("recurring")

		if _, err := s.GetClient(ctx, clientID); err != nil {
			return err
		}

		issue := civil.DateOf(nowFunc())
		if issueStr != "" {
			d, err := civil.ParseDate(issueStr)
			if err != nil {
				return fmt.Errorf("invalid --issue-date %q: %w", issueStr, err)
			}
			issue = d
		}

		if terms == "" {
			settings, err := s.Settings(ctx)
			if err != nil {
				return err
			}
			terms = settings.DefaultTerms
		}

		shipping, err := decimal.NewFromString(shippingStr)
		if err != nil {
			return fmt.Errorf("invalid --shipping %q: %w", shippingStr, err)
		}

		inv := models.NewInvoice(issue)
		inv.Items = []models.LineItem{}
		inv.ClientID = clientID
		inv.Terms = terms
		inv.DueDate = inv.CalculateDueDateFromTerms(issue)
		inv.Shipping = shipping
		inv.Notes = notes
		for _, spec := range specs {
			fields, err := parseItemSpec(spec)
			if err != nil {
				return err
			}
			inv.AddItem(fields)
		}

		if interval != "" {
			iv := models.Interval(strings.ToLower(interval))
			rec := &models.Recurring{Enabled: true, Interval: iv}
			next := rec.Next(issue)
			rec.NextRun = &next
			inv.Recurring = rec
		}

		log.Debug().
			Str("client", clientID).
			Int("items", len(inv.Items)).
			Str("terms", terms).
			Msg("Creating invoice")

		saved, err := s.SaveInvoice(ctx, inv)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return outputJSON(cmd, saved)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s for %s, due %s\n",
			saved.ID, saved.Totals.Grand.StringFixed(models.MoneyPlaces), saved.DueDate)
		return nil
	})
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	return withStore("invoice", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		status, _ := cmd.Flags().GetString("status")

		invoices, err := s.SearchInvoices(ctx, query)
		if err != nil {
			return err
		}

		today := civil.DateOf(nowFunc())
		rows := make([]invoiceRow, 0, len(invoices))
		for i := range invoices {
			st := invoices[i].DisplayStatus(today)
			if status != "" && string(st) != status {
				continue
			}
			rows = append(rows, invoiceRow{Invoice: &invoices[i], Display: st})
		}

		log.Debug().
			Str("query", query).
			Int("matches", len(rows)).
			Msg("Listed invoices")

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

type invoiceRow struct {
	Invoice *models.Invoice
	Display models.Status
}

func printInvoiceTable(cmd *cobra.Command, rows []invoiceRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No invoices found.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tCLIENT\tISSUED\tDUE\tSTATUS\tTOTAL")
	for _, r := range rows {
		inv := r.Invoice
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			inv.ID, inv.ClientID, inv.IssueDate, inv.DueDate, r.Display,
			inv.Totals.Grand.StringFixed(models.MoneyPlaces))
	}
	return w.Flush()
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	return withStore("invoice", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		inv, err := s.GetInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return outputJSON(cmd, inv)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Invoice %s\n", inv.ID)
		if client, err := s.GetClient(ctx, inv.ClientID); err == nil {
			fmt.Fprintf(out, "Client:   %s\n", client.DisplayName())
		} else {
			fmt.Fprintf(out, "Client:   %s (unknown)\n", inv.ClientID)
		}
		fmt.Fprintf(out, "Issued:   %s\n", inv.IssueDate)
		fmt.Fprintf(out, "Due:      %s (%s)\n", inv.DueDate, inv.Terms)
		fmt.Fprintf(out, "Status:   %s\n", inv.DisplayStatus(civil.DateOf(nowFunc())))
		if inv.Recurring != nil && inv.Recurring.Enabled && inv.Recurring.NextRun != nil {
			fmt.Fprintf(out, "Recurs:   %s, next %s\n", inv.Recurring.Interval, inv.Recurring.NextRun)
		}
		fmt.Fprintln(out)

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ITEM\tDESCRIPTION\tQTY\tPRICE\tTAX%\tDISC%\tTOTAL")
		for _, item := range inv.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				item.ID, item.Description, item.Qty, item.UnitPrice.StringFixed(models.MoneyPlaces),
				item.TaxRate, item.DiscountRate, item.Totals().Total.StringFixed(models.MoneyPlaces))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		t := inv.Totals
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Subtotal: %s\n", t.Subtotal.StringFixed(models.MoneyPlaces))
		fmt.Fprintf(out, "Discount: -%s\n", t.Discount.StringFixed(models.MoneyPlaces))
		fmt.Fprintf(out, "Tax:      %s\n", t.Tax.StringFixed(models.MoneyPlaces))
		fmt.Fprintf(out, "Shipping: %s\n", t.Shipping.StringFixed(models.MoneyPlaces))
		fmt.Fprintf(out, "Total:    %s\n", t.Grand.StringFixed(models.MoneyPlaces))
		if inv.Notes != "" {
			fmt.Fprintf(out, "\n%s\n", inv.Notes)
		}
		return nil
	})
}

func runInvoiceUpdate(cmd *cobra.Command, args []string) error {
	return withStore("invoice", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		inv, err := s.GetInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("client") {
			clientID, _ := flags.GetString("client")
			if _, err := s.GetClient(ctx, clientID); err != nil {
				return err
			}
			inv.ClientID = clientID
		}
		if flags.Changed("terms") {
			inv.Terms, _ = flags.GetString("terms")
			inv.DueDate = inv.CalculateDueDateFromTerms(inv.IssueDate)
		}
		if flags.Changed("due-date") {
			raw, _ := flags.GetString("due-date")
			due, err := civil.ParseDate(raw)
			if err != nil {
				return fmt.Errorf("invalid --due-date %q: %w", raw, err)
			}
			inv.DueDate = due
		}
		if flags.Changed("shipping") {
			raw, _ := flags.GetString("shipping")
			shipping, err := decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("invalid --shipping %q: %w", raw, err)
			}
			inv.Shipping = shipping
		}
		if flags.Changed("notes") {
			inv.Notes, _ = flags.GetString("notes")
		}

		removals, _ := flags.GetStringArray("remove-item")
		for _, id := range removals {
			if !inv.RemoveItem(id) {
				return fmt.Errorf("invoice %s has no item %q", inv.ID, id)
			}
		}
		additions, _ := flags.GetStringArray("add-item")
		for _, spec := range additions {
			fields, err := parseItemSpec(spec)
			if err != nil {
				return err
			}
			inv.AddItem(fields)
		}

		saved, err := s.SaveInvoice(ctx, inv)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return outputJSON(cmd, saved)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s, total %s\n",
			saved.ID, saved.Totals.Grand.StringFixed(models.MoneyPlaces))
		return nil
	})
}

func runInvoicePay(cmd *cobra.Command, args []string) error {
	return withStore("invoice", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		inv, err := s.MarkPaid(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return outputJSON(cmd, inv)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as paid\n", inv.ID)
		return nil
	})
}

func runInvoiceDuplicate(cmd *cobra.Command, args []string) error {
	return withStore("invoice", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		dup, err := s.DuplicateInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return outputJSON(cmd, dup)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Duplicated %s as %s, due %s\n", args[0], dup.ID, dup.DueDate)
		return nil
	})
}

func runInvoiceDelete(cmd *cobra.Command, args []string) error {
	return withStore("invoice", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		deleted, err := s.DeleteInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return store.NewError("DeleteInvoice", store.ErrNotFound, fmt.Sprintf("invoice %q", args[0]))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	})
}

func runInvoiceNextNumber(cmd *cobra.Command, args []string) error {
	return withStore("invoice", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		number, err := s.NextInvoiceNumber(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), number)
		return nil
	})
}

// parseItemSpec parses "description:qty:price[:tax[:discount]]".
func parseItemSpec(spec string) (models.ItemFields, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 3 || len(parts) > 5 {
		return models.ItemFields{}, fmt.Errorf("invalid item %q: want description:qty:price[:tax[:discount]]", spec)
	}

	names := []string{"quantity", "price", "tax rate", "discount rate"}
	values := make([]*decimal.Decimal, len(names))
	for i, raw := range parts[1:] {
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return models.ItemFields{}, fmt.Errorf("invalid %s in item %q: %w", names[i], spec, err)
		}
		values[i] = models.Dec(d)
	}

	return models.ItemFields{
		Description:  models.String(strings.TrimSpace(parts[0])),
		Qty:          values[0],
		UnitPrice:    values[1],
		TaxRate:      values[2],
		DiscountRate: values[3],
	}, nil
}
