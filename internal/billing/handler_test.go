package billing

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/billing/internal/billing/calc"
	"github.com/odyssey-erp/billing/internal/platform/httpx"
)

func newTestRouter(t *testing.T, withSummary bool) (http.Handler, *testService) {
	t.Helper()
	ts := newTestService(t, DemoDocuments()...)
	var summaries *SummaryService
	if withSummary {
		summaries = NewSummaryService(ts.repo, nil)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	NewHandler(logger, ts.Service, summaries).MountRoutes(router)
	return router, ts
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHandlerCalculateLineItem(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec := do(t, router, http.MethodPost, "/calculate/line-item",
		`{"productName":"Web Development - Premium","quantity":40,"unitPrice":175,"taxRate":0.1,"discount":100,"discountPercentage":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody[struct {
		LineItem    LineItem                 `json:"lineItem"`
		Calculation calc.LineItemCalculation `json:"calculation"`
	}](t, rec)
	// The percentage wins over the fixed discount.
	assert.True(t, body.Calculation.DiscountAmount.Equal(dec("350")))
	assert.True(t, body.Calculation.Total.Equal(dec("7315")), body.Calculation.Total.String())
	assert.NotEmpty(t, body.LineItem.ProductName)
}

func TestHandlerCalculateLineItemFromCatalog(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec := do(t, router, http.MethodPost, "/calculate/line-item", `{"productId":"PRD005","quantity":24}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody[struct {
		LineItem    LineItem                 `json:"lineItem"`
		Calculation calc.LineItemCalculation `json:"calculation"`
	}](t, rec)
	assert.Equal(t, "Technical Consulting", body.LineItem.ProductName)
	assert.True(t, body.Calculation.Total.Equal(dec("5280")))

	rec = do(t, router, http.MethodPost, "/calculate/line-item", `{"productId":"PRD999","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerValidation(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec := do(t, router, http.MethodPost, "/calculate/line-item", `{"productName":"X","quantity":0,"unitPrice":10}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	problem := decodeBody[httpx.ProblemDetail](t, rec)
	assert.Equal(t, "gt", problem.Fields["Quantity"])

	rec = do(t, router, http.MethodPost, "/calculate/line-item", `{"productName":"X","quantity":1,"bogus":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/invoices", `{"issueDate":"2026-03-15T00:00:00Z","dueDate":"2026-04-14T00:00:00Z","lineItems":[]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	problem = decodeBody[httpx.ProblemDetail](t, rec)
	assert.Equal(t, "required", problem.Fields["ClientID"])
}

func TestHandlerCalculateTotals(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec := do(t, router, http.MethodPost, "/calculate/totals", `{
		"lineItems": [
			{"productName":"Web Development - Premium","quantity":40,"unitPrice":175,"taxRate":0.1},
			{"productName":"UI/UX Design","quantity":20,"unitPrice":140,"taxRate":0.1,"discountPercentage":5}
		],
		"discountType":"percentage",
		"discountValue":0
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	totals := decodeBody[calc.Totals](t, rec)
	assert.True(t, totals.Subtotal.Equal(dec("9800")))
	assert.True(t, totals.TotalDiscount.Equal(dec("140")))
	assert.True(t, totals.TotalTax.Equal(dec("966")))
	assert.True(t, totals.GrandTotal.Equal(dec("10626")))
}

func TestHandlerInvoiceLifecycle(t *testing.T) {
	router, ts := newTestRouter(t, false)

	rec := do(t, router, http.MethodGet, "/invoices/next-number", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "INV-2026-0004", decodeBody[map[string]string](t, rec)["number"])

	rec = do(t, router, http.MethodPost, "/invoices", `{
		"clientId":"CLT002",
		"issueDate":"2026-03-15T00:00:00Z",
		"dueDate":"2026-04-14T00:00:00Z",
		"lineItems":[{"productId":"PRD005","quantity":10}]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[Document](t, rec)
	assert.Equal(t, "INV-2026-0004", created.Number)
	assert.Equal(t, "TechStart Inc.", created.ClientName)
	assert.True(t, created.GrandTotal.Equal(dec("2200")))

	rec = do(t, router, http.MethodPatch, "/invoices/"+created.ID, `{"notes":"Net 30","discountType":"fixed","discountValue":200}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[Document](t, rec)
	assert.Equal(t, "Net 30", updated.Notes)
	assert.True(t, updated.GrandTotal.Equal(dec("2000")))

	rec = do(t, router, http.MethodPost, "/invoices/"+created.ID+"/status", `{"status":"Paid"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusPaid, decodeBody[Document](t, rec).Status)

	rec = do(t, router, http.MethodPost, "/invoices/"+created.ID+"/status", `{"status":"Archived"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, router, http.MethodGet, "/invoices?status=paid", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]Document](t, rec), 2)

	rec = do(t, router, http.MethodGet, "/invoices?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodDelete, "/invoices/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/invoices/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	count, err := ts.repo.Count(t.Context(), TypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestHandlerConvertQuotation(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec := do(t, router, http.MethodPost, "/quotations/QUO-001/convert", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	invoice := decodeBody[Document](t, rec)
	assert.Equal(t, TypeInvoice, invoice.Type)
	assert.True(t, invoice.GrandTotal.Equal(dec("7603.20")))

	rec = do(t, router, http.MethodGet, "/quotations/QUO-001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, invoice.ID, decodeBody[Document](t, rec).ConvertedToInvoiceID)

	rec = do(t, router, http.MethodPost, "/quotations/INV-001/convert", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodPost, "/quotations/missing/convert", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerDocumentsView(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec := do(t, router, http.MethodGet, "/documents?view=summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decodeBody[[]DocumentSummary](t, rec)
	require.Len(t, rows, 5)
	assert.Equal(t, "INV-2026-0001", rows[0].Number)
	assert.Equal(t, TypeQuotation, rows[4].Type)

	rec = do(t, router, http.MethodGet, "/documents?status=Draft", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]Document](t, rec), 2)

	rec = do(t, router, http.MethodGet, "/documents/QUO-002", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alpha Consulting Group", decodeBody[Document](t, rec).ClientName)
}

func TestHandlerSummary(t *testing.T) {
	router, _ := newTestRouter(t, false)
	rec := do(t, router, http.MethodGet, "/summary", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	router, _ = newTestRouter(t, true)
	rec = do(t, router, http.MethodGet, "/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody[Summary](t, rec)
	assert.Equal(t, 3, summary.Invoices.Count)
	assert.Equal(t, 2, summary.PendingConversion)
}
