package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"invoicectl/internal/logger"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the invoice API is reachable",
	Long: `Probe the API's health endpoint. Any 2xx response within 5 seconds
counts as healthy; there are no retries.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().Int("timeout", 10, "Command timeout in seconds")
}

func runHealth(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("health")

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	healthy, err := client.HealthCheck(ctx)
	if err != nil || !healthy {
		log.Error().Err(err).Msg("Health check failed")
		return fmt.Errorf("invoice service is not available")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Invoice service is healthy.")
	return nil
}
