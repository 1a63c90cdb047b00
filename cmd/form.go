package cmd

import (
	"github.com/spf13/cobra"

	"invoicectl/internal/logger"
	"invoicectl/internal/tui"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Open the interactive invoice form",
	Long: `Open a full-screen terminal form for creating an invoice.

The form mirrors the command-line create flow: line items can be added and
removed (at least one always remains), totals update as you type, and
validation messages appear next to the fields once they have been touched.
After a successful submission the preview screen shows the stored invoice.`,
	RunE: runForm,
}

func init() {
	rootCmd.AddCommand(formCmd)
}

func runForm(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("form-cmd")

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	log.Debug().Msg("Starting interactive invoice form")
	return tui.Run(client)
}
