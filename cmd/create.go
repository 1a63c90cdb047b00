package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"invoicectl/internal/api"
	"invoicectl/internal/form"
	"invoicectl/internal/logger"
	"invoicectl/internal/preview"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an invoice from a draft",
	Long: `Create an invoice through the invoice API. The draft is validated
locally before any network call: customer name is required, the email must
be well-formed if present, and every line item needs a product name, a
quantity of at least 1, and a unit price of at least 0.01.

The draft comes either from a JSON file (--file) or from flags. On success
the new invoice is fetched back and rendered as a preview.`,
	Example: `  # Create from a draft file
  invoicectl create --file draft.json

  # Create from flags; --item is "product:quantity:unitPrice[:description]"
  invoicectl create --customer "ACME Corp" --email billing@acme.example \
    --item "Widget:2:19.99" --item "Gadget:1:5.00:with mounting kit" \
    --discount 5`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

// draftFile is the JSON shape accepted by --file. It mirrors the wire DTO,
// with numbers accepted as either JSON numbers or strings.
type draftFile struct {
	TransactionDate string          `json:"transactionDate"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	Discount        json.Number     `json:"discount"`
	Items           []draftFileItem `json:"items"`
}

type draftFileItem struct {
	ProductName        string      `json:"productName"`
	ProductDescription string      `json:"productDescription"`
	Quantity           json.Number `json:"quantity"`
	UnitPrice          json.Number `json:"unitPrice"`
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringP("file", "f", "", "Draft JSON file (same shape as the API's create request)")
	createCmd.Flags().String("date", "", "Transaction date (YYYY-MM-DD, default: today)")
	createCmd.Flags().String("customer", "", "Customer name")
	createCmd.Flags().String("email", "", "Customer email")
	createCmd.Flags().String("phone", "", "Customer phone")
	createCmd.Flags().String("discount", "", "Discount amount")
	createCmd.Flags().StringArray("item", nil, `Line item "product:quantity:unitPrice[:description]" (repeatable)`)
	createCmd.Flags().Int("timeout", 120, "Command timeout in seconds")
}

func runCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("create")

	filePath, _ := cmd.Flags().GetString("file")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	nav := &previewNavigator{ctx: ctx, client: client}
	controller := form.NewController(client, nav)

	if filePath != "" {
		if err := applyDraftFile(controller, filePath); err != nil {
			return err
		}
	} else {
		applyDraftFlags(controller, cmd)
	}

	invoice, err := controller.Submit(ctx)
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			printValidationErrors(cmd, controller)
			return fmt.Errorf("draft not submitted: validation failed")
		}
		log.Error().Err(err).Msg("Invoice creation failed")
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), controller.SubmitMessage())

	log.Info().Int64("invoice_id", invoice.InvoiceID).Msg("Invoice created")
	return nil
}

// applyDraftFile loads a draft JSON file into the form controller.
func applyDraftFile(controller *form.Controller, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read draft file: %w", err)
	}

	var df draftFile
	if err := json.Unmarshal(data, &df); err != nil {
		return fmt.Errorf("failed to parse draft file %s: %w", path, err)
	}

	if df.TransactionDate != "" {
		controller.SetField(form.FieldTransactionDate, df.TransactionDate)
	}
	controller.SetField(form.FieldCustomerName, df.CustomerName)
	controller.SetField(form.FieldCustomerEmail, df.CustomerEmail)
	controller.SetField(form.FieldCustomerPhone, df.CustomerPhone)
	if df.Discount != "" {
		controller.SetField(form.FieldDiscount, df.Discount.String())
	}

	for i, item := range df.Items {
		if i > 0 {
			controller.AddItem()
		}
		controller.SetItemField(i, form.FieldProductName, item.ProductName)
		controller.SetItemField(i, form.FieldProductDescription, item.ProductDescription)
		controller.SetItemField(i, form.FieldQuantity, item.Quantity.String())
		controller.SetItemField(i, form.FieldUnitPrice, item.UnitPrice.String())
	}

	return nil
}

// applyDraftFlags fills the form controller from command-line flags.
func applyDraftFlags(controller *form.Controller, cmd *cobra.Command) {
	if date, _ := cmd.Flags().GetString("date"); date != "" {
		controller.SetField(form.FieldTransactionDate, date)
	}
	if customer, _ := cmd.Flags().GetString("customer"); customer != "" {
		controller.SetField(form.FieldCustomerName, customer)
	}
	if email, _ := cmd.Flags().GetString("email"); email != "" {
		controller.SetField(form.FieldCustomerEmail, email)
	}
	if phone, _ := cmd.Flags().GetString("phone"); phone != "" {
		controller.SetField(form.FieldCustomerPhone, phone)
	}
	if discount, _ := cmd.Flags().GetString("discount"); discount != "" {
		controller.SetField(form.FieldDiscount, discount)
	}

	items, _ := cmd.Flags().GetStringArray("item")
	for i, raw := range items {
		if i > 0 {
			controller.AddItem()
		}
		parts := strings.SplitN(raw, ":", 4)
		if len(parts) > 0 {
			controller.SetItemField(i, form.FieldProductName, parts[0])
		}
		if len(parts) > 1 {
			controller.SetItemField(i, form.FieldQuantity, parts[1])
		}
		if len(parts) > 2 {
			controller.SetItemField(i, form.FieldUnitPrice, parts[2])
		}
		if len(parts) > 3 {
			controller.SetItemField(i, form.FieldProductDescription, parts[3])
		}
	}
}

// printValidationErrors lists every active field error on the draft.
func printValidationErrors(cmd *cobra.Command, controller *form.Controller) {
	out := cmd.ErrOrStderr()
	for _, name := range form.HeaderFields {
		if msg := controller.FieldError(name); msg != "" {
			fmt.Fprintf(out, "  %s\n", msg)
		}
	}
	for i := 0; i < controller.ItemCount(); i++ {
		for _, name := range form.ItemFields {
			if msg := controller.ItemFieldError(i, name); msg != "" {
				fmt.Fprintf(out, "  item %d: %s\n", i+1, msg)
			}
		}
	}
}

// previewNavigator renders the preview of a freshly created invoice when
// the form controller requests navigation to it.
type previewNavigator struct {
	ctx    context.Context
	client *api.Client
}

func (n *previewNavigator) NavigateTo(path string, params ...string) error {
	if path != "/invoice-preview" || len(params) == 0 {
		return nil
	}
	id, err := strconv.ParseInt(params[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid invoice identifier %q: %w", params[0], err)
	}

	controller := preview.NewController(n.client, nil, nil)
	controller.Activate(n.ctx, id)

	invoice := controller.Invoice()
	if invoice == nil {
		return fmt.Errorf("created invoice %d could not be loaded for preview", id)
	}
	fmt.Println()
	fmt.Print(preview.Render(invoice))
	return nil
}
