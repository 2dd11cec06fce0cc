package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/billing/internal/billing/calc"
)

func assertTotals(t *testing.T, got calc.Totals, subtotal, discount, tax, grand string) {
	t.Helper()
	assert.True(t, got.Subtotal.Equal(dec(subtotal)), "subtotal %s", got.Subtotal)
	assert.True(t, got.TotalDiscount.Equal(dec(discount)), "discount %s", got.TotalDiscount)
	assert.True(t, got.TotalTax.Equal(dec(tax)), "tax %s", got.TotalTax)
	assert.True(t, got.GrandTotal.Equal(dec(grand)), "grand total %s", got.GrandTotal)
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreateInvoiceNumbersSequentially(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()

	for i, want := range []string{"INV-2026-0001", "INV-2026-0002", "INV-2026-0003"} {
		doc, err := ts.CreateInvoice(ctx, consultingInput())
		require.NoError(t, err, "invoice %d", i)
		assert.Equal(t, want, doc.Number)
	}

	quote, err := ts.CreateQuotation(ctx, consultingInput())
	require.NoError(t, err)
	assert.Equal(t, "QUO-2026-0001", quote.Number)
	assert.Equal(t, TypeQuotation, quote.Type)
}

func TestCreateInvoiceComputesTotalsAndDefaults(t *testing.T) {
	ts := newTestService(t)

	doc, err := ts.CreateInvoice(context.Background(), consultingInput())
	require.NoError(t, err)

	assertTotals(t, doc.Totals, "7000", "0", "700", "7700")
	assert.Equal(t, StatusDraft, doc.Status)
	assert.Equal(t, calc.DiscountPercentage, doc.DiscountType)
	assert.Equal(t, "Acme Corporation", doc.ClientName)
	assert.Equal(t, testNow, doc.CreatedAt)
	assert.Equal(t, testNow, doc.UpdatedAt)
	assert.NotEmpty(t, doc.ID)
	require.Len(t, doc.LineItems, 1)
	assert.NotEmpty(t, doc.LineItems[0].ID)

	stored, err := ts.repo.Get(context.Background(), TypeInvoice, doc.ID)
	require.NoError(t, err)
	assertTotals(t, stored.Totals, "7000", "0", "700", "7700")
	assert.Equal(t, []EventKind{EventCreated}, ts.events.kinds())
}

func TestCreateKeepsExplicitClientName(t *testing.T) {
	ts := newTestService(t)
	in := consultingInput()
	in.ClientName = "Acme Corp (EU)"
	in.Status = StatusSent

	doc, err := ts.CreateInvoice(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp (EU)", doc.ClientName)
	assert.Equal(t, StatusSent, doc.Status)
}

func TestCreateRetriesNumberCollisions(t *testing.T) {
	ts := newTestService(t)
	ts.repo.failInserts = 2

	doc, err := ts.CreateInvoice(context.Background(), consultingInput())
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0001", doc.Number)
	assert.Equal(t, 3, ts.repo.inserts)
}

func TestCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	ts := newTestService(t)
	ts.repo.failInserts = maxNumberAttempts

	_, err := ts.CreateInvoice(context.Background(), consultingInput())
	require.ErrorIs(t, err, ErrDuplicateNumber)

	count, err := ts.repo.Count(context.Background(), TypeInvoice)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, ts.events.kinds())
}

func TestNextDocumentNumberDoesNotReserve(t *testing.T) {
	ts := newTestService(t, DemoDocuments()...)
	ctx := context.Background()

	first, err := ts.NextDocumentNumber(ctx, TypeInvoice)
	require.NoError(t, err)
	second, err := ts.NextDocumentNumber(ctx, TypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0004", first)
	assert.Equal(t, first, second)

	quote, err := ts.NextDocumentNumber(ctx, TypeQuotation)
	require.NoError(t, err)
	assert.Equal(t, "QUO-2026-0003", quote)
}

func TestLineItemForProductSnapshotsCatalog(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()

	item, err := ts.LineItemForProduct(ctx, "PRD005", dec("24"))
	require.NoError(t, err)
	assert.Equal(t, "Technical Consulting", item.ProductName)
	assert.True(t, item.UnitPrice.Equal(dec("200")))
	assert.True(t, item.TaxRate.Equal(dec("0.10")))
	assert.NotEmpty(t, item.ID)

	_, err = ts.LineItemForProduct(ctx, "PRD999", dec("1"))
	assert.ErrorIs(t, err, ErrProductNotFound)
}

// ============================================================================
// UPDATE
// ============================================================================

func TestUpdateRecomputesTotals(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()

	doc, err := ts.CreateInvoice(ctx, consultingInput())
	require.NoError(t, err)

	ts.now = testNow.Add(time.Hour)
	items := []LineItem{{
		ID:          doc.LineItems[0].ID,
		ProductName: "Web Development - Premium",
		Quantity:    dec("10"),
		UnitPrice:   dec("175"),
		TaxRate:     dec("0.10"),
	}}
	updated, err := ts.UpdateInvoice(ctx, doc.ID, DocumentPatch{LineItems: &items, Notes: ptr("revised")})
	require.NoError(t, err)

	assertTotals(t, updated.Totals, "1750", "0", "175", "1925")
	assert.Equal(t, "revised", updated.Notes)
	assert.Equal(t, doc.Number, updated.Number)
	assert.Equal(t, testNow, updated.CreatedAt)
	assert.Equal(t, testNow.Add(time.Hour), updated.UpdatedAt)
}

func TestUpdateAppliesDocumentDiscount(t *testing.T) {
	ts := newTestService(t)
	ctx := context.Background()

	doc, err := ts.CreateInvoice(ctx, consultingInput())
	require.NoError(t, err)

	updated, err := ts.UpdateDocument(ctx, doc.ID, DocumentPatch{
		DiscountType:  ptr(calc.DiscountPercentage),
		DiscountValue: ptr(dec("10")),
	})
	require.NoError(t, err)
	// Tax stays on the undiscounted rows.
	assertTotals(t, updated.Totals, "7000", "700", "700", "7000")

	fixed, err := ts.UpdateDocument(ctx, doc.ID, DocumentPatch{
		DiscountType:  ptr(calc.DiscountFixed),
		DiscountValue: ptr(dec("500")),
	})
	require.NoError(t, err)
	assertTotals(t, fixed.Totals, "7000", "500", "700", "7200")
}

func TestUpdateRejectsWrongCollection(t *testing.T) {
	ts := newTestService(t, DemoDocuments()...)

	_, err := ts.UpdateQuotation(context.Background(), "INV-001", DocumentPatch{Notes: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	ts := newTestService(t, DemoDocuments()...)
	ctx := context.Background()

	// Any transition is allowed, including leaving Paid.
	for _, status := range []Status{StatusCancelled, StatusDraft, StatusPaid, StatusSent} {
		doc, err := ts.UpdateStatus(ctx, "INV-002", status)
		require.NoError(t, err)
		assert.Equal(t, status, doc.Status)
	}

	_, err := ts.UpdateStatus(ctx, "INV-002", Status("Archived"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ts.UpdateStatus(ctx, "missing", StatusPaid)
	assert.ErrorIs(t, err, ErrNotFound)
}

// ============================================================================
// CONVERSION
// ============================================================================

func TestConvertQuotationCarriesStoredTotals(t *testing.T) {
	ts := newTestService(t, DemoDocuments()...)
	ctx := context.Background()

	invoice, err := ts.ConvertQuotationToInvoice(ctx, "QUO-001")
	require.NoError(t, err)

	assert.Equal(t, TypeInvoice, invoice.Type)
	assert.Equal(t, "INV-2026-0004", invoice.Number)
	assert.Equal(t, StatusDraft, invoice.Status)
	assert.Equal(t, "CLT003", invoice.ClientID)
	assert.Equal(t, "Global Solutions Ltd", invoice.ClientName)
	assert.Equal(t, testNow, invoice.IssueDate)
	assert.Equal(t, testNow.Add(30*24*time.Hour), invoice.DueDate)
	assert.Nil(t, invoice.ValidUntil)
	require.Len(t, invoice.LineItems, 2)
	assert.Equal(t, "Technical Consulting", invoice.LineItems[0].ProductName)
	assertTotals(t, invoice.Totals, "7680", "768", "691.20", "7603.20")

	quote, err := ts.GetQuotation(ctx, "QUO-001")
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, quote.ConvertedToInvoiceID)
	assert.Equal(t, StatusSent, quote.Status)
	assert.Equal(t, testNow, quote.UpdatedAt)

	assert.Equal(t, []EventKind{EventCreated, EventConverted}, ts.events.kinds())
}

func TestConvertQuotationTwiceCreatesSecondInvoice(t *testing.T) {
	ts := newTestService(t, DemoDocuments()...)
	ctx := context.Background()

	first, err := ts.ConvertQuotationToInvoice(ctx, "QUO-001")
	require.NoError(t, err)
	second, err := ts.ConvertQuotationToInvoice(ctx, "QUO-001")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "INV-2026-0005", second.Number)

	quote, err := ts.GetQuotation(ctx, "QUO-001")
	require.NoError(t, err)
	assert.Equal(t, second.ID, quote.ConvertedToInvoiceID)
}

func TestConvertQuotationErrors(t *testing.T) {
	ts := newTestService(t, DemoDocuments()...)
	ctx := context.Background()

	_, err := ts.ConvertQuotationToInvoice(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ts.ConvertQuotationToInvoice(ctx, "INV-001")
	assert.ErrorIs(t, err, ErrWrongDocumentType)

	invoices, err := ts.Invoices(ctx)
	require.NoError(t, err)
	assert.Len(t, invoices, 3)
}

// ============================================================================
// DELETE AND QUERIES
// ============================================================================

func TestDelete(t *testing.T) {
	ts := newTestService(t, DemoDocuments()...)
	ctx := context.Background()

	require.NoError(t, ts.DeleteInvoice(ctx, "INV-002"))
	assert.ErrorIs(t, ts.DeleteInvoice(ctx, "INV-002"), ErrNotFound)
	assert.ErrorIs(t, ts.DeleteQuotation(ctx, "INV-001"), ErrNotFound)

	_, err := ts.GetByID(ctx, "INV-002")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []EventKind{EventDeleted}, ts.events.kinds())
}

func TestCreateAfterDeletingEarlierDocument(t *testing.T) {
	ts := newTestService(t, DemoDocuments()...)
	ctx := context.Background()

	require.NoError(t, ts.DeleteInvoice(ctx, "INV-001"))

	// count + 1 is INV-2026-0003, which INV-003 still holds.
	next, err := ts.NextDocumentNumber(ctx, TypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0004", next)

	created, err := ts.CreateInvoice(ctx, consultingInput())
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0004", created.Number)

	converted, err := ts.ConvertQuotationToInvoice(ctx, "QUO-001")
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0005", converted.Number)

	require.NoError(t, ts.DeleteQuotation(ctx, "QUO-001"))
	quote, err := ts.CreateQuotation(ctx, consultingInput())
	require.NoError(t, err)
	assert.Equal(t, "QUO-2026-0003", quote.Number)
}

func TestCreateAfterDeletingLatestReusesNumber(t *testing.T) {
	ts := newTestService(t, DemoDocuments()...)
	ctx := context.Background()

	require.NoError(t, ts.DeleteInvoice(ctx, "INV-003"))
	created, err := ts.CreateInvoice(ctx, consultingInput())
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0003", created.Number)
}

func TestQueries(t *testing.T) {
	ts := newTestService(t, DemoDocuments()...)
	ctx := context.Background()

	all, err := ts.AllDocuments(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, doc := range all {
		ids = append(ids, doc.ID)
	}
	assert.Equal(t, []string{"INV-001", "INV-002", "INV-003", "QUO-001", "QUO-002"}, ids)

	paid, err := ts.InvoicesByStatus(ctx, StatusPaid)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "INV-002", paid[0].ID)

	drafts, err := ts.DocumentsByStatus(ctx, "", StatusDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "INV-003", drafts[0].ID)
	assert.Equal(t, "QUO-002", drafts[1].ID)

	sentQuotes, err := ts.DocumentsByStatus(ctx, TypeQuotation, StatusSent)
	require.NoError(t, err)
	require.Len(t, sentQuotes, 1)
	assert.Equal(t, "QUO-001", sentQuotes[0].ID)

	doc, err := ts.GetByID(ctx, "QUO-002")
	require.NoError(t, err)
	assert.Equal(t, TypeQuotation, doc.Type)

	_, err = ts.GetInvoice(ctx, "QUO-002")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueriesReturnCopies(t *testing.T) {
	ts := newTestService(t, DemoDocuments()...)
	ctx := context.Background()

	doc, err := ts.GetInvoice(ctx, "INV-001")
	require.NoError(t, err)
	doc.LineItems[0].Quantity = dec("999")

	again, err := ts.GetInvoice(ctx, "INV-001")
	require.NoError(t, err)
	assert.True(t, again.LineItems[0].Quantity.Equal(dec("40")))
}

func TestCalculationPreviews(t *testing.T) {
	ts := newTestService(t)
	items := consultingInput().LineItems

	line := ts.CalculateLineItem(items[0])
	assert.True(t, line.Total.Equal(dec("7700")))

	totals := ts.CalculateTotals(items, calc.DiscountFixed, dec("200"))
	assertTotals(t, totals, "7000", "200", "700", "7500")

	count, err := ts.repo.Count(context.Background(), TypeInvoice)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// ============================================================================
// MAINTENANCE
// ============================================================================

func TestSweepOverdue(t *testing.T) {
	ts := newTestService(t, DemoDocuments()...)
	ctx := context.Background()

	swept, err := ts.SweepOverdue(ctx, ts.now)
	require.NoError(t, err)
	require.Len(t, swept, 1)
	assert.Equal(t, "INV-001", swept[0].ID)
	assert.Equal(t, StatusOverdue, swept[0].Status)

	// Drafts are never swept even when past due.
	draft, err := ts.GetInvoice(ctx, "INV-003")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, draft.Status)

	again, err := ts.SweepOverdue(ctx, ts.now)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestSeedDemoOnlyFillsEmptyRepository(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()

	inserted, err := SeedDemo(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 5, inserted)

	inserted, err = SeedDemo(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}
