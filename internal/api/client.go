// Package api is the single chokepoint for all network calls to the remote
// invoice API. It builds requests, applies per-operation timeout and retry
// policy, unwraps the success/data/message envelope, and normalizes every
// failure into the NetworkError/StatusError/LogicError taxonomy so callers
// never see a raw transport error.
//
// One asymmetry in the collaborator contract is preserved deliberately:
// GET /invoice/{id} returns the Invoice body directly, while the other read
// and write operations wrap their payload in the envelope. Unwrapping is
// therefore operation-specific, not uniform.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"invoicectl/internal/logger"
	"invoicectl/pkg/models"
)

// Per-operation retry attempts on top of the first try. Retries are
// immediate, repeat the identical request, and apply to any failure,
// including envelope-level logical failure.
const (
	createRetries = 2
	readRetries   = 1
	updateRetries = 2
	deleteRetries = 1
)

// Default per-attempt timeouts. A timeout counts as a failure eligible
// for retry.
const (
	defaultRequestTimeout = 30 * time.Second
	defaultHealthTimeout  = 5 * time.Second
)

// Config holds the options recognized by the client.
type Config struct {
	// APIURL is the base path for all requests, e.g. "https://host/api".
	// Invoice operations go to {APIURL}/invoice, health checks to
	// {APIURL}/health.
	APIURL string

	// Production disables the verbose per-request diagnostic logging that
	// is on by default during development.
	Production bool

	// HTTPClient overrides the transport. Defaults to http.DefaultClient;
	// per-attempt deadlines come from the request context, not the client.
	HTTPClient *http.Client

	// RequestTimeout overrides the per-attempt timeout for invoice
	// operations. Default: 30 seconds.
	RequestTimeout time.Duration

	// HealthTimeout overrides the per-attempt timeout for health checks.
	// Default: 5 seconds.
	HealthTimeout time.Duration
}

// Client talks to the remote invoice API.
type Client struct {
	baseURL        string
	healthURL      string
	httpClient     *http.Client
	requestTimeout time.Duration
	healthTimeout  time.Duration
	production     bool
	log            zerolog.Logger
}

// NewClient creates an invoice API client from the given configuration.
func NewClient(cfg Config) *Client {
	root := strings.TrimRight(cfg.APIURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	healthTimeout := cfg.HealthTimeout
	if healthTimeout <= 0 {
		healthTimeout = defaultHealthTimeout
	}

	return &Client{
		baseURL:        root + "/invoice",
		healthURL:      root + "/health",
		httpClient:     httpClient,
		requestTimeout: requestTimeout,
		healthTimeout:  healthTimeout,
		production:     cfg.Production,
		log:            logger.WithComponent("invoice-api"),
	}
}

// CreateInvoice creates a new invoice and returns the server-confirmed record.
func (c *Client) CreateInvoice(ctx context.Context, req *models.InvoiceCreateRequest) (*models.Invoice, error) {
	const op = "CreateInvoice"

	var invoice *models.Invoice
	err := c.execute(ctx, op, http.MethodPost, c.baseURL, req, createRetries, c.requestTimeout, func(data []byte) error {
		inv, err := c.unwrapInvoice(op, c.baseURL, data, "Failed to create invoice")
		if err != nil {
			return err
		}
		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// GetInvoiceByID fetches a single invoice. This path returns the Invoice
// body directly, with no envelope.
func (c *Client) GetInvoiceByID(ctx context.Context, id int64) (*models.Invoice, error) {
	op := "GetInvoiceByID"
	url := fmt.Sprintf("%s/%d", c.baseURL, id)

	var invoice models.Invoice
	err := c.execute(ctx, op, http.MethodGet, url, nil, readRetries, c.requestTimeout, func(data []byte) error {
		if err := json.Unmarshal(data, &invoice); err != nil {
			return &LogicError{Op: op, URL: url, Message: "Failed to fetch invoice", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetAllInvoices fetches every invoice known to the API.
func (c *Client) GetAllInvoices(ctx context.Context) ([]models.Invoice, error) {
	const op = "GetAllInvoices"

	var invoices []models.Invoice
	err := c.execute(ctx, op, http.MethodGet, c.baseURL, nil, readRetries, c.requestTimeout, func(data []byte) error {
		var env models.Envelope[[]models.Invoice]
		if err := json.Unmarshal(data, &env); err != nil {
			return &LogicError{Op: op, URL: c.baseURL, Message: "Failed to fetch invoices", Err: err}
		}
		if !env.Success || env.Data == nil {
			return &LogicError{Op: op, URL: c.baseURL, Message: envelopeMessage(env.Message, "Failed to fetch invoices")}
		}
		invoices = *env.Data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// UpdateInvoice replaces an existing invoice and returns the updated record.
func (c *Client) UpdateInvoice(ctx context.Context, id int64, req *models.InvoiceCreateRequest) (*models.Invoice, error) {
	op := "UpdateInvoice"
	url := fmt.Sprintf("%s/%d", c.baseURL, id)

	var invoice *models.Invoice
	err := c.execute(ctx, op, http.MethodPut, url, req, updateRetries, c.requestTimeout, func(data []byte) error {
		inv, err := c.unwrapInvoice(op, url, data, "Failed to update invoice")
		if err != nil {
			return err
		}
		invoice = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// DeleteInvoice deletes an invoice. The response carries only the envelope's
// success flag.
func (c *Client) DeleteInvoice(ctx context.Context, id int64) error {
	op := "DeleteInvoice"
	url := fmt.Sprintf("%s/%d", c.baseURL, id)

	return c.execute(ctx, op, http.MethodDelete, url, nil, deleteRetries, c.requestTimeout, func(data []byte) error {
		var env models.Envelope[struct{}]
		if err := json.Unmarshal(data, &env); err != nil {
			return &LogicError{Op: op, URL: url, Message: "Failed to delete invoice", Err: err}
		}
		if !env.Success {
			return &LogicError{Op: op, URL: url, Message: envelopeMessage(env.Message, "Failed to delete invoice")}
		}
		return nil
	})
}

// HealthCheck reports whether the API answers on its health endpoint.
// Any 2xx body counts as healthy; there are no retries.
func (c *Client) HealthCheck(ctx context.Context) (bool, error) {
	const op = "HealthCheck"

	err := c.execute(ctx, op, http.MethodGet, c.healthURL, nil, 0, c.healthTimeout, func([]byte) error {
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	return true, nil
}

// unwrapInvoice decodes an enveloped Invoice response.
func (c *Client) unwrapInvoice(op, url string, data []byte, fallback string) (*models.Invoice, error) {
	var env models.Envelope[models.Invoice]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &LogicError{Op: op, URL: url, Message: fallback, Err: err}
	}
	if !env.Success || env.Data == nil {
		return nil, &LogicError{Op: op, URL: url, Message: envelopeMessage(env.Message, fallback)}
	}
	return env.Data, nil
}

func envelopeMessage(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}

// execute runs one operation with its retry budget. decode inspects the 2xx
// body; a decode failure (including an envelope reporting failure) is
// retried like any transport failure. Exhausting the budget surfaces the
// last failure in normalized form.
func (c *Client) execute(ctx context.Context, op, method, url string, body any, retries int, timeout time.Duration, decode func([]byte) error) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &LogicError{Op: op, URL: url, Message: "Failed to encode request", Err: err}
		}
		payload = data
	}

	var lastErr error
	for try := 0; try <= retries; try++ {
		if try > 0 {
			if ctx.Err() != nil {
				break
			}
			c.log.Warn().
				Str("operation", op).
				Str("url", url).
				Int("attempt", try+1).
				Err(lastErr).
				Msg("Retrying invoice API request")
		}

		data, err := c.attempt(ctx, op, method, url, payload, timeout)
		if err == nil {
			err = decode(data)
			if err == nil {
				return nil
			}
		}
		lastErr = err
	}

	c.logFailure(op, url, lastErr)
	return lastErr
}

// attempt performs a single HTTP round trip with its own deadline and maps
// the outcome onto the error taxonomy.
func (c *Client) attempt(ctx context.Context, op, method, url string, payload []byte, timeout time.Duration) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, url, reqBody)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if !c.production {
		c.log.Debug().
			Str("operation", op).
			Str("method", method).
			Str("url", url).
			Int("body_bytes", len(payload)).
			Msg("Sending invoice API request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: url, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: url, Err: err}
	}

	if !c.production {
		c.log.Debug().
			Str("operation", op).
			Int("status", resp.StatusCode).
			Int("response_bytes", len(data)).
			Dur("duration", time.Since(start)).
			Msg("Received invoice API response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{
			Op:         op,
			URL:        url,
			StatusCode: resp.StatusCode,
			Message:    statusMessage(resp.StatusCode, data),
		}
	}

	return data, nil
}

// logFailure records a normalized failure with its operation context.
func (c *Client) logFailure(op, url string, err error) {
	evt := c.log.Error().
		Str("operation", op).
		Str("url", url)

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		evt = evt.Int("status", statusErr.StatusCode)
	}

	evt.Str("message", UserMessage(err)).
		Err(err).
		Msg("Invoice API request failed")
}
