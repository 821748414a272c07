package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"invoicer/internal/store"
	"invoicer/pkg/models"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change business settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change business settings",
	Example: `  invoicer settings set --prefix ACME --currency EUR
  invoicer settings set --business-name "Acme Ltd" --default-terms "Net 14"`,
	Args: cobra.NoArgs,
	RunE: runSettingsSet,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	f := settingsSetCmd.Flags()
	f.String("prefix", "", "Invoice number prefix (at most 10 characters)")
	f.String("currency", "", "Currency code: "+currencyList())
	f.Int("seed", 0, "Counter used for the next invoice number")
	f.String("business-name", "", "Business name")
	f.String("business-email", "", "Business email address")
	f.String("business-address", "", "Business postal address")
	f.String("default-terms", "", "Terms applied to new invoices")
}

func currencyList() string {
	codes := make([]string, len(models.Currencies))
	for i, c := range models.Currencies {
		codes[i] = string(c)
	}
	return strings.Join(codes, ", ")
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	return withStore("settings", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		settings, err := s.Settings(ctx)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return outputJSON(cmd, settings)
		}
		next, err := s.NextInvoiceNumber(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Prefix:        %s\n", settings.InvoicePrefix)
		fmt.Fprintf(out, "Currency:      %s\n", settings.Currency)
		fmt.Fprintf(out, "Next number:   %s\n", next)
		fmt.Fprintf(out, "Default terms: %s\n", settings.DefaultTerms)
		if settings.BusinessName != "" {
			fmt.Fprintf(out, "Business:      %s\n", settings.BusinessName)
		}
		if settings.BusinessEmail != "" {
			fmt.Fprintf(out, "Email:         %s\n", settings.BusinessEmail)
		}
		if settings.BusinessAddress != "" {
			fmt.Fprintf(out, "Address:       %s\n", settings.BusinessAddress)
		}
		return nil
	})
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	return withStore("settings", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		settings, err := s.Settings(ctx)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		strs := map[string]*string{
			"prefix":           &settings.InvoicePrefix,
			"business-name":    &settings.BusinessName,
			"business-email":   &settings.BusinessEmail,
			"business-address": &settings.BusinessAddress,
			"default-terms":    &settings.DefaultTerms,
		}
		for name, target := range strs {
			if flags.Changed(name) {
				*target, _ = flags.GetString(name)
			}
		}
		if flags.Changed("currency") {
			code, _ := flags.GetString("currency")
			settings.Currency = models.Currency(strings.ToUpper(code))
		}
		if flags.Changed("seed") {
			settings.NumberSeed, _ = flags.GetInt("seed")
		}

		saved, err := s.UpdateSettings(ctx, settings)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return outputJSON(cmd, saved)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Settings updated")
		return nil
	})
}
