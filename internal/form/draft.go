package form

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoicectl/pkg/models"
)

// Field identifiers. Forms are iterated by these static lists, never by
// reflection; each field carries its own rule set and touched flag.
const (
	FieldTransactionDate = "transactionDate"
	FieldCustomerName    = "customerName"
	FieldCustomerEmail   = "customerEmail"
	FieldCustomerPhone   = "customerPhone"
	FieldDiscount        = "discount"

	FieldProductName        = "productName"
	FieldProductDescription = "productDescription"
	FieldQuantity           = "quantity"
	FieldUnitPrice          = "unitPrice"
)

// HeaderFields lists the invoice header fields in form order.
var HeaderFields = []string{
	FieldTransactionDate,
	FieldCustomerName,
	FieldCustomerEmail,
	FieldCustomerPhone,
	FieldDiscount,
}

// ItemFields lists the line-item fields in form order.
var ItemFields = []string{
	FieldProductName,
	FieldProductDescription,
	FieldQuantity,
	FieldUnitPrice,
}

// ItemDraft holds the raw input values of one line item being edited.
// Values stay strings until submission so a blank entry is distinguishable
// from an explicit zero.
type ItemDraft struct {
	ProductName        string
	ProductDescription string
	Quantity           string
	UnitPrice          string
}

// Draft is locally held, not-yet-persisted invoice state being edited.
// A draft always has at least one line item.
type Draft struct {
	TransactionDate string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	Discount        string
	Items           []ItemDraft
}

// newItemDraft returns a line item with the form defaults.
func newItemDraft() ItemDraft {
	return ItemDraft{Quantity: "1", UnitPrice: "0"}
}

// newDraft returns a fresh draft: current-date header, zero discount, one
// default line item.
func newDraft(now time.Time) *Draft {
	return &Draft{
		TransactionDate: now.Format(models.DateLayout),
		Discount:        "0",
		Items:           []ItemDraft{newItemDraft()},
	}
}

// field returns the named header field value.
func (d *Draft) field(name string) string {
	switch name {
	case FieldTransactionDate:
		return d.TransactionDate
	case FieldCustomerName:
		return d.CustomerName
	case FieldCustomerEmail:
		return d.CustomerEmail
	case FieldCustomerPhone:
		return d.CustomerPhone
	case FieldDiscount:
		return d.Discount
	}
	return ""
}

// setField sets the named header field value.
func (d *Draft) setField(name, value string) {
	switch name {
	case FieldTransactionDate:
		d.TransactionDate = value
	case FieldCustomerName:
		d.CustomerName = value
	case FieldCustomerEmail:
		d.CustomerEmail = value
	case FieldCustomerPhone:
		d.CustomerPhone = value
	case FieldDiscount:
		d.Discount = value
	}
}

// field returns the named item field value.
func (it *ItemDraft) field(name string) string {
	switch name {
	case FieldProductName:
		return it.ProductName
	case FieldProductDescription:
		return it.ProductDescription
	case FieldQuantity:
		return it.Quantity
	case FieldUnitPrice:
		return it.UnitPrice
	}
	return ""
}

// setField sets the named item field value.
func (it *ItemDraft) setField(name, value string) {
	switch name {
	case FieldProductName:
		it.ProductName = value
	case FieldProductDescription:
		it.ProductDescription = value
	case FieldQuantity:
		it.Quantity = value
	case FieldUnitPrice:
		it.UnitPrice = value
	}
}

// isBlank reports whether a raw input value is empty.
func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// parseQuantity parses a quantity input, treating blank or malformed
// values as 0.
func parseQuantity(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

// parseAmount parses a monetary input, treating blank or malformed values
// as 0.
func parseAmount(value string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}
	return d
}
