package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"invoicectl/internal/api"
	"invoicectl/internal/form"
	"invoicectl/internal/logger"
)

var updateCmd = &cobra.Command{
	Use:   "update [invoice-id]",
	Short: "Replace a stored invoice with a new draft",
	Long: `Replace an existing invoice. The replacement draft goes through the
same client-side validation as create and is sent as a full invoice body;
the API recomputes totals and balances.`,
	Example: `  invoicectl update 42 --file draft.json
  invoicectl update 42 --customer "ACME Corp" --item "Widget:3:19.99"`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringP("file", "f", "", "Draft JSON file (same shape as the API's create request)")
	updateCmd.Flags().String("date", "", "Transaction date (YYYY-MM-DD, default: today)")
	updateCmd.Flags().String("customer", "", "Customer name")
	updateCmd.Flags().String("email", "", "Customer email")
	updateCmd.Flags().String("phone", "", "Customer phone")
	updateCmd.Flags().String("discount", "", "Discount amount")
	updateCmd.Flags().StringArray("item", nil, `Line item "product:quantity:unitPrice[:description]" (repeatable)`)
	updateCmd.Flags().Int("timeout", 120, "Command timeout in seconds")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("update")

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid invoice identifier %q", args[0])
	}

	filePath, _ := cmd.Flags().GetString("file")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	controller := form.NewController(client, nil)
	if filePath != "" {
		if err := applyDraftFile(controller, filePath); err != nil {
			return err
		}
	} else {
		applyDraftFlags(controller, cmd)
	}

	req, err := controller.BuildCreateRequest()
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			printValidationErrors(cmd, controller)
			return fmt.Errorf("invoice not updated: validation failed")
		}
		return err
	}

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	invoice, err := client.UpdateInvoice(ctx, id, req)
	if err != nil {
		log.Error().Err(err).Int64("invoice_id", id).Msg("Invoice update failed")
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Invoice %d updated successfully.\n", invoice.InvoiceID)
	log.Info().Int64("invoice_id", invoice.InvoiceID).Msg("Invoice updated")
	return nil
}
