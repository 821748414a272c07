package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"invoicer/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all clients, invoices and settings as JSON",
	Example: `  # Print to stdout
  invoicer export

  # Save a backup
  invoicer export -o backup.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all data with a previously exported JSON document",
	Long: `Replace all data with a previously exported JSON document.

The document must contain "clients" and "invoices" arrays and a "settings"
object. Missing settings take their defaults. A malformed document is
rejected and the existing data is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all clients and invoices and restore default settings",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd, resetCmd)

	exportCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	resetCmd.Flags().Bool("yes", false, "Confirm deleting all data")
}

func runExport(cmd *cobra.Command, args []string) error {
	return withStore("export", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		outputPath, _ := cmd.Flags().GetString("output")

		data, err := s.ExportJSON(ctx)
		if err != nil {
			return err
		}

		if outputPath == "" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			log.Error().
				Err(err).
				Str("output", outputPath).
				Msg("Failed to write export file")
			return fmt.Errorf("failed to write export file: %w", err)
		}
		log.Info().
			Str("output", outputPath).
			Int("bytes", len(data)).
			Msg("Data exported")
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", outputPath)
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	return withStore("import", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Error().
				Err(err).
				Str("file", args[0]).
				Msg("Failed to read import file")
			return fmt.Errorf("failed to read import file: %w", err)
		}
		if err := s.ImportJSON(ctx, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", args[0])
		return nil
	})
}

func runReset(cmd *cobra.Command, args []string) error {
	confirmed, _ := cmd.Flags().GetBool("yes")
	if !confirmed {
		return fmt.Errorf("refusing to delete all data without --yes")
	}
	return withStore("reset", func(ctx context.Context, s *store.Store, log zerolog.Logger) error {
		if err := s.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All data cleared")
		return nil
	})
}
