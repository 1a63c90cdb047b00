package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"invoicectl/internal/api"
	"invoicectl/internal/logger"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all invoices",
	Long: `Fetch every invoice known to the API and print a summary table:
identifier, transaction date, customer, total, and outstanding balance.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Int("timeout", 120, "Command timeout in seconds")
}

func runList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("list")

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	invoices, err := client.GetAllInvoices(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list invoices")
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	out := cmd.OutOrStdout()
	if len(invoices) == 0 {
		fmt.Fprintln(out, "No invoices found.")
		return nil
	}

	fmt.Fprintf(out, "%-10s %-12s %-30s %12s %12s\n", "ID", "Date", "Customer", "Total", "Balance")
	for _, inv := range invoices {
		customer := inv.CustomerName
		if len(customer) > 30 {
			customer = customer[:27] + "..."
		}
		fmt.Fprintf(out, "%-10d %-12s %-30s %12s %12s\n",
			inv.InvoiceID,
			inv.TransactionDate.Format("2006-01-02"),
			customer,
			inv.TotalAmount.StringFixed(2),
			inv.BalanceAmount.StringFixed(2),
		)
	}

	log.Debug().Int("count", len(invoices)).Msg("Invoices listed")
	return nil
}
