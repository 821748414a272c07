package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"invoicer/internal/store"
	"invoicer/pkg/models"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage billed clients",
}

var clientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a client",
	Example: `  invoicer client add --name "Ada Lovelace" --company "Analytical Engines" \
    --email ada@example.com --phone "+44 20 7946 0000"`,
	Args: cobra.NoArgs,
	RunE: runClientAdd,
}

var clientUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a client",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientUpdate,
}

var clientListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List clients, optionally filtered by name, company or email",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClientList,
}

var clientDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a client that no invoice references",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientDelete,
}

// clientFields are the editable client flags.
var clientFields = []string{"name", "company", "email", "phone", "address", "tax-id"}

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(clientAddCmd, clientUpdateCmd, clientListCmd, clientDeleteCmd)

	for _, c := range []*cobra.Command{clientAddCmd, clientUpdateCmd} {
		c.Flags().String("name", "", "Contact name")
		c.Flags().String("company", "", "Company name")
		c.Flags().String("email", "", "Email address")
		c.Flags().String("phone", "", "Phone number")
		c.Flags().String("address", "", "Postal address")
		c.Flags().String("tax-id", "", "Tax identification number")
	}
	_ = clientAddCmd.MarkFlagRequired("name")
}

// applyClientFlags copies the changed flags onto c.
func applyClientFlags(cmd *cobra.Command, c *models.Client) {
	targets := map[string]*string{
		"name":    &c.Name,
		"company": &c.Company,
		"email":   &c.Email,
		"phone":   &c.Phone,
		"address": &c.Address,
		"tax-id":  &c.TaxID,
	}
	for _, name := range clientFields {
		if cmd.Flags().Changed(name) {
			*targets[name], _ = cmd.Flags().GetString(name)
		}
	}
}

func runClientAdd(cmd *cobra.Command, args []string) error {
	return withStore("client", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		c := &models.Client{}
		applyClientFlags(cmd, c)

		saved, err := s.SaveClient(ctx, c)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return outputJSON(cmd, saved)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added client %s (%s)\n", saved.DisplayName(), saved.ID)
		return nil
	})
}

func runClientUpdate(cmd *cobra.Command, args []string) error {
	return withStore("client", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		c, err := s.GetClient(ctx, args[0])
		if err != nil {
			return err
		}
		applyClientFlags(cmd, c)

		saved, err := s.SaveClient(ctx, c)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return outputJSON(cmd, saved)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated client %s\n", saved.DisplayName())
		return nil
	})
}

func runClientList(cmd *cobra.Command, args []string) error {
	return withStore("client", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		clients, err := s.SearchClients(ctx, query)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return outputJSON(cmd, clients)
		}
		if len(clients) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No clients found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tEMAIL")
		for _, c := range clients {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Company, c.Email)
		}
		return w.Flush()
	})
}

func runClientDelete(cmd *cobra.Command, args []string) error {
	return withStore("client", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		return deleteClient(ctx, s, log, args[0], cmd)
	})
}

// deleteClient refuses to remove a client that invoices still reference.
func deleteClient(ctx context.Context, s *store.Store, log zerolog.Logger, id string, cmd *cobra.Command) error {
	billed, err := s.InvoicesForClient(ctx, id)
	if err != nil {
		return err
	}
	if len(billed) > 0 {
		log.Warn().
			Str("client", id).
			Int("invoices", len(billed)).
			Msg("Refusing to delete client with invoices")
		return store.NewError("DeleteClient", store.ErrClientInUse,
			fmt.Sprintf("%d invoice(s) reference client %q", len(billed), id))
	}

	deleted, err := s.DeleteClient(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return store.NewError("DeleteClient", store.ErrNotFound, fmt.Sprintf("client %q", id))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted client %s\n", id)
	return nil
}
