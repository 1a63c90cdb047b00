// Package form owns the editable state of one invoice draft: an ordered
// list of line items with a floor of one, per-field validation with touched
// flags, derived subtotal/total arithmetic, and the submission flow that
// projects a valid draft into the wire DTO.
package form

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"invoicectl/internal/api"
	"invoicectl/internal/logger"
	"invoicectl/pkg/models"
)

// validate guards the projected DTO right before it goes on the wire.
var validate = validator.New(validator.WithRequiredStructEnabled())

// minUnitPrice is the smallest accepted unit price.
var minUnitPrice = decimal.RequireFromString("0.01")

// Creator is the API Client surface the form controller needs.
type Creator interface {
	CreateInvoice(ctx context.Context, req *models.InvoiceCreateRequest) (*models.Invoice, error)
}

// Navigator is the navigation collaborator. A navigation failure is logged
// only; the form never depends on navigation succeeding.
type Navigator interface {
	NavigateTo(path string, params ...string) error
}

// Controller owns one invoice draft for its edit session. The draft is
// discarded on successful submission (replaced with a fresh default draft)
// and retained on failure for correction.
type Controller struct {
	creator Creator
	nav     Navigator
	now     func() time.Time
	log     zerolog.Logger

	mu            sync.Mutex
	draft         *Draft
	headerTouched map[string]bool
	itemTouched   []map[string]bool
	submitting    bool
	submitMessage string
	submitError   string
}

// NewController creates a form controller with a fresh default draft.
func NewController(creator Creator, nav Navigator) *Controller {
	c := &Controller{
		creator: creator,
		nav:     nav,
		now:     time.Now,
		log:     logger.WithComponent("invoice-form"),
	}
	c.reset()
	return c
}

// reset replaces the draft with a fresh one and clears all touched flags.
// Callers hold no lock during construction; otherwise mu is held.
func (c *Controller) reset() {
	c.draft = newDraft(c.now())
	c.headerTouched = make(map[string]bool)
	c.itemTouched = []map[string]bool{make(map[string]bool)}
}

// Draft returns a copy of the current draft state.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := *c.draft
	d.Items = append([]ItemDraft(nil), c.draft.Items...)
	return d
}

// Field returns the named header field's current value.
func (c *Controller) Field(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.field(name)
}

// SetField sets a header field and marks it touched.
func (c *Controller) SetField(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.setField(name, value)
	c.headerTouched[name] = true
}

// ItemField returns the named field of the line item at index.
func (c *Controller) ItemField(index int, name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.draft.Items) {
		return ""
	}
	return c.draft.Items[index].field(name)
}

// SetItemField sets a line-item field and marks it touched.
func (c *Controller) SetItemField(index int, name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.draft.Items) {
		return
	}
	c.draft.Items[index].setField(name, value)
	c.itemTouched[index][name] = true
}

// ItemCount returns the number of line items.
func (c *Controller) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.draft.Items)
}

// AddItem appends one default line item. There is no upper bound.
func (c *Controller) AddItem() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Items = append(c.draft.Items, newItemDraft())
	c.itemTouched = append(c.itemTouched, make(map[string]bool))
}

// RemoveItem removes the line item at index, unless it is the last one.
// A draft always keeps at least one item; removing the last is a silent
// no-op, not an error.
func (c *Controller) RemoveItem(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.draft.Items) <= 1 || index < 0 || index >= len(c.draft.Items) {
		return
	}
	c.draft.Items = append(c.draft.Items[:index], c.draft.Items[index+1:]...)
	c.itemTouched = append(c.itemTouched[:index], c.itemTouched[index+1:]...)
}

// ItemTotal returns quantity × unitPrice for the item at index. Blank or
// malformed fields count as 0; the result is never an error.
func (c *Controller) ItemTotal(index int) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemTotal(index)
}

func (c *Controller) itemTotal(index int) decimal.Decimal {
	if index < 0 || index >= len(c.draft.Items) {
		return decimal.Zero
	}
	item := c.draft.Items[index]
	qty := parseQuantity(item.Quantity)
	price := parseAmount(item.UnitPrice)
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// Subtotal returns the sum of all line totals.
func (c *Controller) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotal()
}

func (c *Controller) subtotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range c.draft.Items {
		sum = sum.Add(c.itemTotal(i))
	}
	return sum
}

// Total returns max(0, subtotal − discount). The discount input is treated
// as 0 when blank and clamped to non-negative for the computation only; the
// stored value is never changed.
func (c *Controller) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total()
}

func (c *Controller) total() decimal.Decimal {
	discount := parseAmount(c.draft.Discount)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	total := c.subtotal().Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Validate evaluates every field's rule set and marks all fields touched so
// validation messages become visible. It reports whether the draft as a
// whole is valid.
func (c *Controller) Validate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markAllTouched()
	return c.valid()
}

func (c *Controller) markAllTouched() {
	for _, name := range HeaderFields {
		c.headerTouched[name] = true
	}
	for i := range c.draft.Items {
		for _, name := range ItemFields {
			c.itemTouched[i][name] = true
		}
	}
}

func (c *Controller) valid() bool {
	for _, name := range HeaderFields {
		if c.headerError(name) != "" {
			return false
		}
	}
	for i := range c.draft.Items {
		for _, name := range ItemFields {
			if c.itemError(i, name) != "" {
				return false
			}
		}
	}
	return true
}

// FieldError returns the validation message for a header field, or ""
// when the field is valid or has not been interacted with.
func (c *Controller) FieldError(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.headerTouched[name] {
		return ""
	}
	return c.headerError(name)
}

// ItemFieldError returns the validation message for a line-item field, or
// "" when the field is valid or has not been interacted with.
func (c *Controller) ItemFieldError(index int, name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.draft.Items) {
		return ""
	}
	if !c.itemTouched[index][name] {
		return ""
	}
	return c.itemError(index, name)
}

// headerError evaluates one header field's rules in precedence order:
// required, format, max-length, minimum-value.
func (c *Controller) headerError(name string) string {
	value := c.draft.field(name)
	switch name {
	case FieldTransactionDate:
		if isBlank(value) {
			return fmt.Sprintf("%s is required", name)
		}
		if _, err := time.Parse(models.DateLayout, value); err != nil {
			return "Please enter a valid date"
		}
	case FieldCustomerName:
		if isBlank(value) {
			return fmt.Sprintf("%s is required", name)
		}
		if len([]rune(value)) > 100 {
			return fmt.Sprintf("%s is too long", name)
		}
	case FieldCustomerEmail:
		if isBlank(value) {
			return ""
		}
		if err := validate.Var(value, "email"); err != nil {
			return "Please enter a valid email"
		}
		if len([]rune(value)) > 200 {
			return fmt.Sprintf("%s is too long", name)
		}
	case FieldCustomerPhone:
		if len([]rune(value)) > 15 {
			return fmt.Sprintf("%s is too long", name)
		}
	case FieldDiscount:
		if isBlank(value) {
			return ""
		}
		if _, err := decimal.NewFromString(value); err != nil {
			return fmt.Sprintf("%s must be a number", name)
		}
		if parseAmount(value).IsNegative() {
			return fmt.Sprintf("%s must be greater than or equal to 0", name)
		}
	}
	return ""
}

// itemError evaluates one line-item field's rules in the same precedence
// order as headerError.
func (c *Controller) itemError(index int, name string) string {
	value := c.draft.Items[index].field(name)
	switch name {
	case FieldProductName:
		if isBlank(value) {
			return fmt.Sprintf("%s is required", name)
		}
		if len([]rune(value)) > 100 {
			return fmt.Sprintf("%s is too long", name)
		}
	case FieldProductDescription:
		if len([]rune(value)) > 500 {
			return fmt.Sprintf("%s is too long", name)
		}
	case FieldQuantity:
		if isBlank(value) {
			return fmt.Sprintf("%s is required", name)
		}
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Sprintf("%s must be a whole number", name)
		}
		if parseQuantity(value) < 1 {
			return fmt.Sprintf("%s must be greater than 1", name)
		}
	case FieldUnitPrice:
		if isBlank(value) {
			return fmt.Sprintf("%s is required", name)
		}
		if _, err := decimal.NewFromString(value); err != nil {
			return fmt.Sprintf("%s must be a number", name)
		}
		if parseAmount(value).LessThan(minUnitPrice) {
			return fmt.Sprintf("%s must be greater than 0.01", name)
		}
	}
	return ""
}

// firstError returns the first failing field as a ValidationError, walking
// header fields then items in form order.
func (c *Controller) firstError() *ValidationError {
	for _, name := range HeaderFields {
		if msg := c.headerError(name); msg != "" {
			return NewValidationError(name, msg)
		}
	}
	for i := range c.draft.Items {
		for _, name := range ItemFields {
			if msg := c.itemError(i, name); msg != "" {
				return NewValidationError(fmt.Sprintf("items.%d.%s", i, name), msg)
			}
		}
	}
	return nil
}

// BuildCreateRequest projects the draft into the wire DTO. It fails with a
// ValidationError when the draft is invalid. Absent optional text fields
// become empty strings and an absent discount becomes 0.
func (c *Controller) BuildCreateRequest() (*models.InvoiceCreateRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildCreateRequest()
}

func (c *Controller) buildCreateRequest() (*models.InvoiceCreateRequest, error) {
	c.markAllTouched()
	if err := c.firstError(); err != nil {
		return nil, err
	}

	date, err := time.Parse(models.DateLayout, c.draft.TransactionDate)
	if err != nil {
		return nil, NewValidationError(FieldTransactionDate, "Please enter a valid date")
	}

	discount := parseAmount(c.draft.Discount)

	req := &models.InvoiceCreateRequest{
		TransactionDate: date.Format(models.DateLayout),
		CustomerName:    c.draft.CustomerName,
		CustomerEmail:   c.draft.CustomerEmail,
		CustomerPhone:   c.draft.CustomerPhone,
		Discount:        discount,
		Items:           make([]models.InvoiceItemCreateRequest, 0, len(c.draft.Items)),
	}
	for _, item := range c.draft.Items {
		req.Items = append(req.Items, models.InvoiceItemCreateRequest{
			ProductName:        item.ProductName,
			ProductDescription: item.ProductDescription,
			Quantity:           parseQuantity(item.Quantity),
			UnitPrice:          parseAmount(item.UnitPrice),
		})
	}

	// Final structural guard on the projected DTO.
	if err := validate.Struct(req); err != nil {
		c.log.Error().Err(err).Msg("Projected DTO failed structural validation")
		return nil, NewValidationError("", err.Error())
	}

	return req, nil
}

// Submit validates the draft and creates the invoice through the API
// Client. On an invalid draft it marks all fields touched and returns a
// ValidationError without issuing a network call. On success it records a
// success message, resets the draft, and requests navigation to the new
// invoice's preview; a navigation failure is logged but does not undo the
// reset. On failure the draft is left untouched for correction and the
// user-facing message is recorded. A call while a submission is already in
// flight returns ErrSubmissionInFlight.
func (c *Controller) Submit(ctx context.Context) (*models.Invoice, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}

	req, err := c.buildCreateRequest()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	c.submitting = true
	c.submitMessage = ""
	c.submitError = ""
	c.mu.Unlock()

	invoice, err := c.creator.CreateInvoice(ctx, req)

	c.mu.Lock()
	c.submitting = false

	if err != nil {
		c.submitError = api.UserMessage(err)
		c.mu.Unlock()
		c.log.Error().Err(err).Msg("Invoice submission failed")
		return nil, err
	}

	c.submitMessage = fmt.Sprintf("Invoice created successfully! Invoice ID: %d", invoice.InvoiceID)
	c.reset()
	c.mu.Unlock()

	c.log.Info().Int64("invoice_id", invoice.InvoiceID).Msg("Invoice created")

	if c.nav != nil {
		if navErr := c.nav.NavigateTo("/invoice-preview", strconv.FormatInt(invoice.InvoiceID, 10)); navErr != nil {
			c.log.Error().Err(navErr).Msg("Navigation to invoice preview failed")
		}
	}

	return invoice, nil
}

// IsSubmitting reports whether a submission is in flight.
func (c *Controller) IsSubmitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// SubmitMessage returns the success message from the last submission, if any.
func (c *Controller) SubmitMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitMessage
}

// SubmitError returns the user-facing message from the last failed
// submission, if any.
func (c *Controller) SubmitError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitError
}
