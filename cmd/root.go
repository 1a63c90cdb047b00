package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoicectl/internal/api"
	"invoicectl/internal/config"
	"invoicectl/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoicectl",
	Short: "invoicectl - manage invoices through the remote invoice API",
	Long: `invoicectl is a command-line client for the invoice API. It creates
invoices from drafts with client-side validation, previews stored invoices,
and lists, updates, and deletes them.

All persistence, numbering, and business rules live in the remote API;
this client collects input, validates it, and talks to the API on your
behalf. Set INVOICE_API_URL (or put it in a .env file) to point the client
at your API.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("invoicectl executed")

		fmt.Println("Welcome to invoicectl!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

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

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}

// newAPIClient builds the API client from the environment configuration.
func newAPIClient() (*api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w\n"+
			"Set INVOICE_API_URL to your invoice API base path, e.g.\n"+
			"  INVOICE_API_URL=https://localhost:44397/api", err)
	}
	return api.NewClient(api.Config{
		APIURL:     cfg.APIURL,
		Production: cfg.Production,
	}), nil
}

// commandContext creates a context with a timeout and interrupt handling.
func commandContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling request")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
