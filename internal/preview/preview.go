// Package preview exposes the read-only invoice preview: load one invoice
// by identifier and render a loading/loaded/error view state.
package preview

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"invoicectl/internal/logger"
	"invoicectl/pkg/models"
)

// Getter is the API Client surface the preview controller needs.
type Getter interface {
	GetInvoiceByID(ctx context.Context, id int64) (*models.Invoice, error)
}

// Navigator requests navigation on behalf of the preview.
type Navigator interface {
	NavigateTo(path string, params ...string) error
}

// Printer hands a loaded invoice to the host environment's print facility.
type Printer interface {
	Print(invoice *models.Invoice) error
}

// Controller holds the view state of one invoice preview. There is no
// separate error message: a finished load with no invoice set is the error
// state, and the presentation layer renders it as such.
type Controller struct {
	getter  Getter
	nav     Navigator
	printer Printer
	log     zerolog.Logger

	mu      sync.Mutex
	loading bool
	invoice *models.Invoice
}

// NewController creates a preview controller.
func NewController(getter Getter, nav Navigator, printer Printer) *Controller {
	return &Controller{
		getter:  getter,
		nav:     nav,
		printer: printer,
		log:     logger.WithComponent("invoice-preview"),
	}
}

// Activate loads the invoice with the given identifier. On failure the
// invoice stays unset and the failure is logged; the caller observes
// loading=false with no invoice.
func (c *Controller) Activate(ctx context.Context, id int64) {
	c.mu.Lock()
	c.loading = true
	c.invoice = nil
	c.mu.Unlock()

	invoice, err := c.getter.GetInvoiceByID(ctx, id)

	c.mu.Lock()
	c.loading = false
	if err == nil {
		c.invoice = invoice
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Error().Err(err).Int64("invoice_id", id).Msg("Error loading invoice")
		return
	}
	c.log.Debug().Int64("invoice_id", id).Msg("Invoice loaded")
}

// Loading reports whether a load is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Invoice returns the loaded invoice, or nil when none is loaded.
func (c *Controller) Invoice() *models.Invoice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invoice
}

// Print hands the loaded invoice to the print facility. It is a no-op when
// no invoice is loaded.
func (c *Controller) Print() {
	c.mu.Lock()
	invoice := c.invoice
	c.mu.Unlock()

	if invoice == nil || c.printer == nil {
		return
	}
	if err := c.printer.Print(invoice); err != nil {
		c.log.Error().Err(err).Msg("Print failed")
	}
}

// GoBack requests navigation to the default route. A failure is logged only.
func (c *Controller) GoBack() {
	if c.nav == nil {
		return
	}
	if err := c.nav.NavigateTo("/"); err != nil {
		c.log.Error().Err(err).Msg("Navigation failed")
	}
}
