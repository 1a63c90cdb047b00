package preview

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicectl/pkg/models"
)

type fakeGetter struct {
	calls   int
	lastID  int64
	invoice *models.Invoice
	err     error
}

func (f *fakeGetter) GetInvoiceByID(ctx context.Context, id int64) (*models.Invoice, error) {
	f.calls++
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.invoice, nil
}

type fakeNavigator struct {
	path string
	err  error
}

func (f *fakeNavigator) NavigateTo(path string, params ...string) error {
	f.path = path
	return f.err
}

func sampleInvoice() *models.Invoice {
	return &models.Invoice{
		InvoiceID:       42,
		TransactionDate: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		CustomerName:    "Acme Corp",
		CustomerEmail:   "billing@acme.test",
		Discount:        decimal.RequireFromString("5"),
		TotalAmount:     decimal.RequireFromString("95"),
		BalanceAmount:   decimal.RequireFromString("95"),
		CreatedAt:       time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Items: []models.InvoiceItem{
			{
				InvoiceItemID:      1,
				ProductName:        "Widget",
				ProductDescription: "Standard widget",
				Quantity:           2,
				UnitPrice:          decimal.RequireFromString("50"),
				TotalPrice:         decimal.RequireFromString("100"),
			},
		},
	}
}

func TestActivate(t *testing.T) {
	t.Run("loads the invoice", func(t *testing.T) {
		getter := &fakeGetter{invoice: sampleInvoice()}
		c := NewController(getter, nil, nil)

		c.Activate(context.Background(), 42)

		assert.False(t, c.Loading())
		require.NotNil(t, c.Invoice())
		assert.Equal(t, int64(42), c.Invoice().InvoiceID)
		assert.Equal(t, int64(42), getter.lastID)
	})

	t.Run("load failure leaves no invoice set", func(t *testing.T) {
		getter := &fakeGetter{err: errors.New("status 404")}
		c := NewController(getter, nil, nil)

		c.Activate(context.Background(), 999)

		assert.False(t, c.Loading())
		assert.Nil(t, c.Invoice())
	})

	t.Run("reload clears the previous invoice on failure", func(t *testing.T) {
		getter := &fakeGetter{invoice: sampleInvoice()}
		c := NewController(getter, nil, nil)

		c.Activate(context.Background(), 42)
		require.NotNil(t, c.Invoice())

		getter.err = errors.New("gone")
		c.Activate(context.Background(), 42)
		assert.Nil(t, c.Invoice())
	})
}

func TestPrint(t *testing.T) {
	t.Run("prints the loaded invoice", func(t *testing.T) {
		var buf bytes.Buffer
		getter := &fakeGetter{invoice: sampleInvoice()}
		c := NewController(getter, nil, &ConsolePrinter{Out: &buf})

		c.Activate(context.Background(), 42)
		c.Print()

		assert.Contains(t, buf.String(), "Invoice #:  42")
	})

	t.Run("no-op without a loaded invoice", func(t *testing.T) {
		var buf bytes.Buffer
		c := NewController(&fakeGetter{err: errors.New("nope")}, nil, &ConsolePrinter{Out: &buf})

		c.Activate(context.Background(), 1)
		c.Print()

		assert.Empty(t, buf.String())
	})
}

func TestGoBack(t *testing.T) {
	nav := &fakeNavigator{}
	c := NewController(&fakeGetter{}, nav, nil)

	c.GoBack()
	assert.Equal(t, "/", nav.path)

	// A navigation failure is logged only.
	nav.err = errors.New("route missing")
	c.GoBack()
}

func TestRender(t *testing.T) {
	out := Render(sampleInvoice())

	assert.Contains(t, out, "INVOICE")
	assert.Contains(t, out, "Invoice #:  42")
	assert.Contains(t, out, "Aug 28, 2026")
	assert.Contains(t, out, "Acme Corp")
	assert.Contains(t, out, "billing@acme.test")
	assert.Contains(t, out, "Widget")
	assert.Contains(t, out, "Standard widget")
	assert.Contains(t, out, "100.00")

	// Discount renders negated; totals come from the server-assigned fields.
	assert.Contains(t, out, "-5.00")
	assert.Contains(t, out, "95.00")
}

func TestRenderSkipsZeroDiscount(t *testing.T) {
	inv := sampleInvoice()
	inv.Discount = decimal.Zero
	out := Render(inv)
	assert.NotContains(t, out, "Discount")
}
