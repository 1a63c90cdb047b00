package preview

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"invoicectl/pkg/models"
)

// Render formats a loaded invoice as a printable text document.
func Render(inv *models.Invoice) string {
	var b strings.Builder

	sep := strings.Repeat("=", 64)
	line := strings.Repeat("-", 64)

	b.WriteString("INVOICE\n")
	b.WriteString(sep + "\n")
	b.WriteString(fmt.Sprintf("Invoice #:  %d\n", inv.InvoiceID))
	b.WriteString(fmt.Sprintf("Date:       %s\n", inv.TransactionDate.Format("Jan 02, 2006")))
	b.WriteString(fmt.Sprintf("Created:    %s\n", inv.CreatedAt.Format("Jan 02, 2006")))

	b.WriteString("\nBill To:\n")
	b.WriteString(fmt.Sprintf("  %s\n", inv.CustomerName))
	if inv.CustomerEmail != "" {
		b.WriteString(fmt.Sprintf("  %s\n", inv.CustomerEmail))
	}
	if inv.CustomerPhone != "" {
		b.WriteString(fmt.Sprintf("  %s\n", inv.CustomerPhone))
	}

	b.WriteString("\n" + line + "\n")
	b.WriteString(fmt.Sprintf("%-30s %6s %12s %12s\n", "Product", "Qty", "Unit Price", "Total"))
	b.WriteString(line + "\n")

	subtotal := decimal.Zero
	for _, item := range inv.Items {
		name := item.ProductName
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		b.WriteString(fmt.Sprintf("%-30s %6d %12s %12s\n",
			name,
			item.Quantity,
			item.UnitPrice.StringFixed(2),
			item.TotalPrice.StringFixed(2),
		))
		if item.ProductDescription != "" {
			b.WriteString(fmt.Sprintf("  %s\n", item.ProductDescription))
		}
		subtotal = subtotal.Add(item.TotalPrice)
	}

	b.WriteString(line + "\n")
	b.WriteString(fmt.Sprintf("%50s %12s\n", "Subtotal", subtotal.StringFixed(2)))
	if inv.Discount.IsPositive() {
		b.WriteString(fmt.Sprintf("%50s %12s\n", "Discount", inv.Discount.Neg().StringFixed(2)))
	}
	b.WriteString(fmt.Sprintf("%50s %12s\n", "TOTAL", inv.TotalAmount.StringFixed(2)))
	b.WriteString(fmt.Sprintf("%50s %12s\n", "Balance", inv.BalanceAmount.StringFixed(2)))
	b.WriteString(sep + "\n")

	return b.String()
}

// ConsolePrinter writes rendered invoices to a writer, standing in for the
// host environment's print facility.
type ConsolePrinter struct {
	Out io.Writer
}

// Print implements Printer.
func (p *ConsolePrinter) Print(invoice *models.Invoice) error {
	_, err := io.WriteString(p.Out, Render(invoice))
	return err
}
