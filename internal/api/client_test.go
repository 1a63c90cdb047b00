package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicectl/pkg/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{APIURL: srv.URL + "/api", Production: true})
	return client, srv
}

func invoiceJSON(id int64) string {
	return fmt.Sprintf(`{
		"invoiceId": %d,
		"transactionDate": "2026-08-28T00:00:00Z",
		"customerName": "Acme Corp",
		"customerEmail": "billing@acme.test",
		"customerPhone": "555-0100",
		"discount": 5.00,
		"totalAmount": 95.00,
		"balanceAmount": 95.00,
		"createdAt": "2026-08-28T12:00:00Z",
		"items": [
			{"invoiceItemId": 1, "productName": "Widget", "productDescription": "",
			 "quantity": 2, "unitPrice": 50.00, "totalPrice": 100.00}
		]
	}`, id)
}

func testCreateRequest() *models.InvoiceCreateRequest {
	return &models.InvoiceCreateRequest{
		TransactionDate: "2026-08-28",
		CustomerName:    "Acme Corp",
		Items: []models.InvoiceItemCreateRequest{
			{ProductName: "Widget", Quantity: 2},
		},
	}
}

func TestCreateInvoiceUnwrapsEnvelope(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody models.InvoiceCreateRequest

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		fmt.Fprintf(w, `{"success": true, "data": %s}`, invoiceJSON(42))
	})

	invoice, err := client.CreateInvoice(context.Background(), testCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/invoice", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Acme Corp", gotBody.CustomerName)

	assert.Equal(t, int64(42), invoice.InvoiceID)
	assert.Equal(t, "Acme Corp", invoice.CustomerName)
	assert.Equal(t, "95", invoice.TotalAmount.String())
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, 2, invoice.Items[0].Quantity)
}

func TestCreateInvoiceRetriesServerError(t *testing.T) {
	var attempts atomic.Int32

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"success": true, "data": %s}`, invoiceJSON(7))
	})

	invoice, err := client.CreateInvoice(context.Background(), testCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(7), invoice.InvoiceID)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestCreateInvoiceRetriesEnvelopeFailure(t *testing.T) {
	var attempts atomic.Int32

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		fmt.Fprint(w, `{"success": false, "message": "Duplicate invoice number"}`)
	})

	_, err := client.CreateInvoice(context.Background(), testCreateRequest())
	require.Error(t, err)

	// An envelope reporting failure consumes the full retry budget too.
	assert.Equal(t, int32(3), attempts.Load())

	var logicErr *LogicError
	require.ErrorAs(t, err, &logicErr)
	assert.Equal(t, "Duplicate invoice number", logicErr.Message)
	assert.Equal(t, "Duplicate invoice number", UserMessage(err))
}

func TestCreateInvoiceEnvelopeWithoutData(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": true}`)
	})

	_, err := client.CreateInvoice(context.Background(), testCreateRequest())

	var logicErr *LogicError
	require.ErrorAs(t, err, &logicErr)
	assert.Equal(t, "Failed to create invoice", logicErr.Message)
}

func TestGetInvoiceByIDReadsRawBody(t *testing.T) {
	var gotPath string

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		// No envelope on this path.
		fmt.Fprint(w, invoiceJSON(42))
	})

	invoice, err := client.GetInvoiceByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "/api/invoice/42", gotPath)
	assert.Equal(t, int64(42), invoice.InvoiceID)
	assert.Equal(t, "billing@acme.test", invoice.CustomerEmail)
}

func TestGetInvoiceByIDNotFound(t *testing.T) {
	var attempts atomic.Int32

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Invoice not found"}`)
	})

	_, err := client.GetInvoiceByID(context.Background(), 999)
	require.Error(t, err)

	// One retry for reads.
	assert.Equal(t, int32(2), attempts.Load())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "Invoice not found", UserMessage(err))
}

func TestGetAllInvoices(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/invoice", r.URL.Path)
		fmt.Fprintf(w, `{"success": true, "data": [%s, %s]}`, invoiceJSON(1), invoiceJSON(2))
	})

	invoices, err := client.GetAllInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, int64(1), invoices[0].InvoiceID)
	assert.Equal(t, int64(2), invoices[1].InvoiceID)
}

func TestUpdateInvoice(t *testing.T) {
	var gotMethod, gotPath string

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		fmt.Fprintf(w, `{"success": true, "data": %s}`, invoiceJSON(42))
	})

	invoice, err := client.UpdateInvoice(context.Background(), 42, testCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/invoice/42", gotPath)
	assert.Equal(t, int64(42), invoice.InvoiceID)
}

func TestDeleteInvoice(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotMethod, gotPath string
		client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			fmt.Fprint(w, `{"success": true}`)
		})

		require.NoError(t, client.DeleteInvoice(context.Background(), 42))
		assert.Equal(t, http.MethodDelete, gotMethod)
		assert.Equal(t, "/api/invoice/42", gotPath)
	})

	t.Run("envelope failure", func(t *testing.T) {
		client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"success": false, "message": "Invoice has payments"}`)
		})

		err := client.DeleteInvoice(context.Background(), 42)
		var logicErr *LogicError
		require.ErrorAs(t, err, &logicErr)
		assert.Equal(t, "Invoice has payments", logicErr.Message)
	})
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(Config{APIURL: srv.URL + "/api", Production: true})

	_, err := client.GetAllInvoices(context.Background())
	require.Error(t, err)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, networkMessage, UserMessage(err))
}

func TestTimeoutIsRetriedAsNetworkFailure(t *testing.T) {
	var attempts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		APIURL:         srv.URL + "/api",
		Production:     true,
		RequestTimeout: 50 * time.Millisecond,
	})

	_, err := client.GetInvoiceByID(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, int32(2), attempts.Load())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestRetryStopsWhenContextCanceled(t *testing.T) {
	var attempts atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		cancel()
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.CreateInvoice(ctx, testCreateRequest())
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/health", r.URL.Path)
			fmt.Fprint(w, "Healthy")
		})

		ok, err := client.HealthCheck(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unhealthy", func(t *testing.T) {
		var attempts atomic.Int32
		client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		ok, err := client.HealthCheck(context.Background())
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrServiceUnavailable)
		// Health checks are a single shot.
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		client := NewClient(Config{APIURL: srv.URL + "/api", Production: true})

		ok, err := client.HealthCheck(context.Background())
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})
}

func TestBaseURLTrailingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, invoiceJSON(1))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{APIURL: srv.URL + "/api/", Production: true})
	_, err := client.GetInvoiceByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "/api/invoice/1", gotPath)
}
