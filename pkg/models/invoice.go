package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The invoice API exchanges monetary values as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout is the calendar-date format the API expects for transaction dates.
const DateLayout = "2006-01-02"

// Invoice is a server-confirmed invoice. Identifiers, totals, and balances
// are assigned by the API and are read-only in this client.
type Invoice struct {
	InvoiceID       int64           `json:"invoiceId"`
	TransactionDate time.Time       `json:"transactionDate"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	Discount        decimal.Decimal `json:"discount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	BalanceAmount   decimal.Decimal `json:"balanceAmount"`
	CreatedAt       time.Time       `json:"createdAt"`
	Items           []InvoiceItem   `json:"items"`
}

// InvoiceItem is a resolved line item carrying its server-assigned
// identifier and server-computed total price.
type InvoiceItem struct {
	InvoiceItemID      int64           `json:"invoiceItemId"`
	ProductName        string          `json:"productName"`
	ProductDescription string          `json:"productDescription"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	TotalPrice         decimal.Decimal `json:"totalPrice"`
}

// InvoiceCreateRequest is the wire DTO for creating or updating an invoice.
// TransactionDate is a plain calendar date string (see DateLayout).
type InvoiceCreateRequest struct {
	TransactionDate string                     `json:"transactionDate" validate:"required,datetime=2006-01-02"`
	CustomerName    string                     `json:"customerName" validate:"required,max=100"`
	CustomerEmail   string                     `json:"customerEmail" validate:"omitempty,email,max=200"`
	CustomerPhone   string                     `json:"customerPhone" validate:"max=15"`
	Discount        decimal.Decimal            `json:"discount"`
	Items           []InvoiceItemCreateRequest `json:"items" validate:"required,min=1,dive"`
}

// InvoiceItemCreateRequest is the wire DTO for one line item.
type InvoiceItemCreateRequest struct {
	ProductName        string          `json:"productName" validate:"required,max=100"`
	ProductDescription string          `json:"productDescription" validate:"max=500"`
	Quantity           int             `json:"quantity" validate:"required,min=1"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
}

// Envelope is the {success, data, message, errors} wrapper most API
// responses use. GetInvoiceByID is the exception: it returns the Invoice
// body directly with no envelope.
type Envelope[T any] struct {
	Success bool     `json:"success"`
	Data    *T       `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}
