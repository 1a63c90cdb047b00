package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"invoicectl/internal/logger"
	"invoicectl/internal/preview"
)

var showCmd = &cobra.Command{
	Use:   "show [invoice-id]",
	Short: "Fetch and preview a stored invoice",
	Long: `Fetch a single invoice by its identifier and render it as a
printable text preview. With --output, the raw invoice is additionally
written to a JSON file.`,
	Example: `  # Preview invoice 42
  invoicectl show 42

  # Preview and export the raw record
  invoicectl show 42 -o invoice-42.json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringP("output", "o", "", "Write the raw invoice JSON to this file")
	showCmd.Flags().Int("timeout", 120, "Command timeout in seconds")
}

func runShow(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("show")

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid invoice identifier %q", args[0])
	}

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	controller := preview.NewController(client, nil, &preview.ConsolePrinter{Out: cmd.OutOrStdout()})
	controller.Activate(ctx, id)

	invoice := controller.Invoice()
	if invoice == nil {
		// The preview's error state: loading finished with nothing loaded.
		return fmt.Errorf("invoice %d could not be loaded", id)
	}

	controller.Print()

	if outputPath != "" {
		data, err := json.MarshalIndent(invoice, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode invoice: %w", err)
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(data)).
			Msg("Invoice written to file")
	}

	return nil
}
