package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "400 with errors map",
			status: http.StatusBadRequest,
			body:   `{"errors": {"customerEmail": ["Email format is invalid"], "customerName": ["Name is required"]}}`,
			want:   "Email format is invalid, Name is required",
		},
		{
			name:   "400 without usable body",
			status: http.StatusBadRequest,
			body:   "",
			want:   "Bad Request - Please check your input data",
		},
		{
			name:   "401",
			status: http.StatusUnauthorized,
			body:   "",
			want:   "Unauthorized - Please log in again",
		},
		{
			name:   "403",
			status: http.StatusForbidden,
			body:   "",
			want:   "Forbidden - You do not have permission to perform this action",
		},
		{
			name:   "404 with body message",
			status: http.StatusNotFound,
			body:   `{"message": "Invoice not found"}`,
			want:   "Invoice not found",
		},
		{
			name:   "404 without body message",
			status: http.StatusNotFound,
			body:   "",
			want:   "Resource not found",
		},
		{
			name:   "409",
			status: http.StatusConflict,
			body:   "",
			want:   "Conflict - The resource already exists or has been modified",
		},
		{
			name:   "422 with errors array",
			status: http.StatusUnprocessableEntity,
			body:   `{"errors": ["Quantity must be positive", "Date is in the future"]}`,
			want:   "Quantity must be positive, Date is in the future",
		},
		{
			name:   "422 without usable body",
			status: http.StatusUnprocessableEntity,
			body:   "",
			want:   "Validation failed - Please check your input data",
		},
		{
			name:   "500",
			status: http.StatusInternalServerError,
			body:   `{"message": "stack trace here"}`,
			want:   "Internal server error. Please try again later or contact support.",
		},
		{
			name:   "502",
			status: http.StatusBadGateway,
			body:   "",
			want:   "Bad Gateway - The server is temporarily unavailable",
		},
		{
			name:   "503",
			status: http.StatusServiceUnavailable,
			body:   "",
			want:   "Service Unavailable - The server is temporarily down for maintenance",
		},
		{
			name:   "504",
			status: http.StatusGatewayTimeout,
			body:   "",
			want:   "Gateway Timeout - The request took too long to process",
		},
		{
			name:   "unlisted status with body message",
			status: http.StatusTeapot,
			body:   `{"message": "short and stout"}`,
			want:   "short and stout",
		},
		{
			name:   "unlisted status without body message",
			status: http.StatusTeapot,
			body:   "",
			want:   "Error Code: 418\nMessage: I'm a teapot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusMessage(tt.status, []byte(tt.body)))
		})
	}
}

func TestExtractValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "empty body",
			body: "",
			want: "",
		},
		{
			name: "json string body is the message",
			body: `"Transaction date must not be in the future"`,
			want: "Transaction date must not be in the future",
		},
		{
			name: "message field wins over errors",
			body: `{"message": "top-level message", "errors": ["ignored"]}`,
			want: "top-level message",
		},
		{
			name: "errors array joined",
			body: `{"errors": ["first problem", "second problem"]}`,
			want: "first problem, second problem",
		},
		{
			name: "errors map flattened in key order",
			body: `{"errors": {"b": ["second"], "a": "first"}}`,
			want: "first, second",
		},
		{
			name: "errors present but empty",
			body: `{"errors": {}}`,
			want: "Validation failed",
		},
		{
			name: "title as last structured resort",
			body: `{"title": "One or more validation errors occurred."}`,
			want: "One or more validation errors occurred.",
		},
		{
			name: "non-json body surfaced raw",
			body: "  plain text failure  ",
			want: "plain text failure",
		},
		{
			name: "object with nothing usable",
			body: `{"traceId": "00-abc"}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractValidationErrors([]byte(tt.body)))
		})
	}
}

func TestUserMessage(t *testing.T) {
	netErr := &NetworkError{Op: "CreateInvoice", URL: "http://x", Err: errors.New("dial refused")}
	assert.Equal(t, networkMessage, UserMessage(netErr))

	statusErr := &StatusError{Op: "GetInvoiceByID", StatusCode: 404, Message: "Resource not found"}
	assert.Equal(t, "Resource not found", UserMessage(statusErr))

	logicErr := &LogicError{Op: "DeleteInvoice", Message: "Failed to delete invoice"}
	assert.Equal(t, "Failed to delete invoice", UserMessage(logicErr))

	// Wrapped errors still resolve through errors.As.
	wrapped := errors.Join(errors.New("outer"), statusErr)
	assert.Equal(t, "Resource not found", UserMessage(wrapped))

	plain := errors.New("something else")
	assert.Equal(t, "something else", UserMessage(plain))

	assert.Equal(t, "", UserMessage(nil))
}
