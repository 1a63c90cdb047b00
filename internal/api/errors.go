package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Common invoice API errors
var (
	// ErrServiceUnavailable is returned by HealthCheck when the API does not
	// answer with a 2xx status within the health timeout.
	ErrServiceUnavailable = errors.New("invoice service is not available")
)

// networkMessage is the connectivity guidance shown when a request never
// reached the server (offline, DNS failure, connection refused, timeout).
const networkMessage = "Unable to connect to the server. Please check your internet connection and try again."

// userFacing is implemented by every normalized API error.
type userFacing interface {
	UserMessage() string
}

// UserMessage extracts the human-readable message from a normalized API
// error. Any other error falls back to its Error string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var uf userFacing
	if errors.As(err, &uf) {
		return uf.UserMessage()
	}
	return err.Error()
}

// NetworkError indicates the request never reached the server: offline,
// DNS failure, connection refused, or a per-attempt timeout.
type NetworkError struct {
	// Op is the operation that failed (e.g., "CreateInvoice").
	Op string

	// URL is the request URL.
	URL string

	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("api: %s failed: network error: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UserMessage returns the connectivity-check guidance for display.
func (e *NetworkError) UserMessage() string {
	return networkMessage
}

// StatusError indicates the server responded with a non-2xx status. Message
// carries the status-specific human-readable text resolved from the status
// code and response body.
type StatusError struct {
	// Op is the operation that failed.
	Op string

	// URL is the request URL.
	URL string

	// StatusCode is the HTTP status the server answered with.
	StatusCode int

	// Message is the user-facing message for this failure.
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %s failed: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// UserMessage returns the status-specific message for display.
func (e *StatusError) UserMessage() string {
	return e.Message
}

// LogicError indicates the transport succeeded with a 2xx status, but the
// response envelope reported failure or carried no data.
type LogicError struct {
	// Op is the operation that failed.
	Op string

	// URL is the request URL.
	URL string

	// Message is the envelope message, or a per-operation default.
	Message string

	// Err is the underlying decode error, if any.
	Err error
}

// Error implements the error interface.
func (e *LogicError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api: %s failed: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("api: %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *LogicError) Unwrap() error {
	return e.Err
}

// UserMessage returns the envelope-derived message for display.
func (e *LogicError) UserMessage() string {
	return e.Message
}

// statusMessage resolves the user-facing message for a non-2xx response.
// 400 and 422 try structured validation text from the body first; the other
// listed codes have fixed messages; everything else falls back to the body's
// message field or a generic code + status text string.
func statusMessage(status int, body []byte) string {
	switch status {
	case http.StatusBadRequest:
		if msg := extractValidationErrors(body); msg != "" {
			return msg
		}
		return "Bad Request - Please check your input data"
	case http.StatusUnauthorized:
		return "Unauthorized - Please log in again"
	case http.StatusForbidden:
		return "Forbidden - You do not have permission to perform this action"
	case http.StatusNotFound:
		if msg := bodyMessage(body); msg != "" {
			return msg
		}
		return "Resource not found"
	case http.StatusConflict:
		return "Conflict - The resource already exists or has been modified"
	case http.StatusUnprocessableEntity:
		if msg := extractValidationErrors(body); msg != "" {
			return msg
		}
		return "Validation failed - Please check your input data"
	case http.StatusInternalServerError:
		return "Internal server error. Please try again later or contact support."
	case http.StatusBadGateway:
		return "Bad Gateway - The server is temporarily unavailable"
	case http.StatusServiceUnavailable:
		return "Service Unavailable - The server is temporarily down for maintenance"
	case http.StatusGatewayTimeout:
		return "Gateway Timeout - The request took too long to process"
	default:
		if msg := bodyMessage(body); msg != "" {
			return msg
		}
		return fmt.Sprintf("Error Code: %d\nMessage: %s", status, http.StatusText(status))
	}
}

// errorBody is the loose shape of structured error responses. Errors may be
// a plain array of strings or a field-name map of strings/arrays
// (ASP.NET ModelState style), so it stays raw until inspected.
type errorBody struct {
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Title   string          `json:"title"`
}

// extractValidationErrors pulls validation text out of a 400/422 body.
// Precedence: plain string body, message field, errors array/map (entries
// flattened and joined), title field. Returns "" when nothing usable is found.
func extractValidationErrors(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	// A JSON string body is the message itself.
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		// Not JSON at all; surface the raw text.
		return trimmed
	}

	if eb.Message != "" {
		return eb.Message
	}

	if len(eb.Errors) > 0 {
		if joined := flattenErrors(eb.Errors); joined != "" {
			return joined
		}
		return "Validation failed"
	}

	if eb.Title != "" {
		return eb.Title
	}

	return ""
}

// flattenErrors joins an errors array, or a field map of strings/arrays,
// into a single comma-separated message. Map entries are visited in sorted
// key order so the output is deterministic.
func flattenErrors(raw json.RawMessage) string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}

	var byField map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byField); err != nil {
		return ""
	}

	keys := make([]string, 0, len(byField))
	for k := range byField {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var flat []string
	for _, k := range keys {
		var entries []string
		if err := json.Unmarshal(byField[k], &entries); err == nil {
			flat = append(flat, entries...)
			continue
		}
		var one string
		if err := json.Unmarshal(byField[k], &one); err == nil && one != "" {
			flat = append(flat, one)
		}
	}
	return strings.Join(flat, ", ")
}

// bodyMessage returns the body's message field, if the body is a JSON
// object carrying one.
func bodyMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return eb.Message
}
