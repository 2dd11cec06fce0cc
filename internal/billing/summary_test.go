package billing

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/billing/internal/platform/cache"
)

func newSummaryCache(t *testing.T) *cache.Versioned {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewVersioned(client, "billing:summary", time.Minute)
}

func TestSummaryAggregatesDemoData(t *testing.T) {
	repo := newMockRepository(DemoDocuments()...)
	svc := NewSummaryService(repo, nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Invoices.Count)
	assert.True(t, summary.Invoices.TotalValue.Equal(dec("13609.92")), summary.Invoices.TotalValue.String())
	assert.Equal(t, "$13,609.92", summary.Invoices.Display)
	assert.Equal(t, 2, summary.Quotations.Count)
	assert.True(t, summary.Quotations.TotalValue.Equal(dec("11453.20")))
	assert.True(t, summary.Outstanding.Equal(dec("10626")))
	assert.Equal(t, 2, summary.PendingConversion)

	require.Len(t, summary.Invoices.ByStatus, len(Statuses))
	paid := summary.Invoices.ByStatus[2]
	assert.Equal(t, StatusPaid, paid.Status)
	assert.Equal(t, 1, paid.Count)
	assert.True(t, paid.Total.Equal(dec("2158.92")))
}

func TestSummaryExcludesConvertedQuotations(t *testing.T) {
	ts := newTestService(t, DemoDocuments()...)
	_, err := ts.ConvertQuotationToInvoice(context.Background(), "QUO-001")
	require.NoError(t, err)

	summary, err := NewSummaryService(ts.repo, nil).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PendingConversion)
	assert.Equal(t, 4, summary.Invoices.Count)
}

func TestSummaryCacheInvalidatedByEvents(t *testing.T) {
	ctx := context.Background()
	ts := newTestService(t, DemoDocuments()...)
	summaries := NewSummaryService(ts.repo, newSummaryCache(t))
	ts.Service.notifier = summaries.Invalidator(nil)

	before, err := summaries.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, before.Invoices.Count)

	// Writes that bypass the service are not seen until the next event.
	require.NoError(t, ts.repo.Insert(ctx, Document{ID: "direct", Number: "INV-2026-0099", Type: TypeInvoice, Status: StatusDraft}))
	cached, err := summaries.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cached.Invoices.Count)

	_, err = ts.CreateInvoice(ctx, consultingInput())
	require.NoError(t, err)

	after, err := summaries.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Invoices.Count)
	assert.True(t, after.Invoices.TotalValue.Equal(dec("21309.92")), after.Invoices.TotalValue.String())
}
