package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"invoicer/internal/config"
	"invoicer/internal/logger"
	"invoicer/internal/storage"
	"invoicer/internal/store"
)

var version = "1.0.0"

// nowFunc is the clock used for display-time status.
var nowFunc = time.Now

var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Invoicer - create, track and export client invoices",
	Long: `Invoicer keeps clients, invoices and business settings in a single
document and computes invoice totals with cent-exact rounding.

The document is stored through a configurable backend:
  STORE_BACKEND - file (default), memory, sqlite or postgres
  STORE_PATH    - document path for the file backend (default: invoicer.json)
  DATABASE_DSN  - connection string for the sqlite and postgres backends`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// commandContext returns a context canceled on interrupt.
func commandContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// openStore builds the store from the environment configuration.
func openStore(ctx context.Context, log zerolog.Logger) (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Configuration invalid")
		return nil, err
	}

	opts := cfg.GetStorageOptions()
	backend, err := storage.Open(ctx, opts)
	if err != nil {
		log.Error().
			Err(err).
			Str("backend", string(opts.Kind)).
			Msg("Failed to open storage backend")
		return nil, fmt.Errorf("failed to open %s storage: %w", opts.Kind, err)
	}

	log.Debug().
		Str("backend", string(opts.Kind)).
		Msg("Storage backend opened")
	return store.New(backend), nil
}

// withStore runs fn against an open store and closes it afterwards.
func withStore(component string, fn func(ctx context.Context, s *store.Store, log zerolog.Logger) error) error {
	log := logger.WithComponent(component)
	ctx, cancel := commandContext(log)
	defer cancel()

	s, err := openStore(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close store")
		}
	}()

	if err := fn(ctx, s, log); err != nil {
		return handleStoreError(err, log)
	}
	return nil
}

// handleStoreError turns store failures into user-facing messages.
func handleStoreError(err error, log zerolog.Logger) error {
	log.Debug().Err(err).Msg("Store operation failed")

	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := "validation failed:"
		for _, e := range verr.Result.Errors {
			msg += "\n  - " + e
		}
		return errors.New(msg)
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("not found: %w", err)
	case errors.Is(err, store.ErrInvalidImport):
		return fmt.Errorf("import rejected, existing data was left untouched: %w", err)
	case errors.Is(err, store.ErrClientInUse):
		return err
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation was canceled")
	default:
		return err
	}
}

// outputJSON writes v as indented JSON to stdout.
func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
