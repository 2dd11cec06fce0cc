package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/billing/internal/billing"
	"github.com/odyssey-erp/billing/internal/billing/store/postgres"
	"github.com/odyssey-erp/billing/internal/platform/db"
)

func setupRepository(t *testing.T) *postgres.Repository {
	t.Helper()
	_ = godotenv.Load("../../../../.env")

	// Runs against a dedicated database only; the table is truncated.
	dsn := os.Getenv("BILLING_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("BILLING_TEST_PG_DSN not set, skipping postgres integration test")
	}

	ctx := context.Background()
	pool, err := db.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := postgres.NewRepository(pool)
	require.NoError(t, repo.Migrate(ctx))
	truncate(t, pool)
	return repo
}

func truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE billing_documents RESTART IDENTITY")
	require.NoError(t, err)
}

func TestRepositoryLifecycle(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	svc := billing.NewService(repo, billing.ServiceConfig{Clock: func() time.Time { return now }})

	input := billing.DocumentInput{
		ClientID:   "CLT003",
		ClientName: "Global Solutions Ltd",
		IssueDate:  now,
		DueDate:    now.AddDate(0, 0, 30),
		LineItems: []billing.LineItem{{
			ProductName: "Technical Consulting",
			Quantity:    decimal.NewFromInt(24),
			UnitPrice:   decimal.NewFromInt(200),
			TaxRate:     decimal.RequireFromString("0.10"),
		}},
	}

	quote, err := svc.CreateQuotation(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "QUO-2026-0001", quote.Number)

	invoice, err := svc.ConvertQuotationToInvoice(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0001", invoice.Number)
	assert.True(t, invoice.GrandTotal.Equal(quote.GrandTotal))

	stored, err := repo.Get(ctx, "", quote.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, stored.ConvertedToInvoiceID)

	_, err = svc.UpdateStatus(ctx, invoice.ID, billing.StatusSent)
	require.NoError(t, err)
	swept, err := svc.SweepOverdue(ctx, now.AddDate(0, 2, 0))
	require.NoError(t, err)
	require.Len(t, swept, 1)
	assert.Equal(t, billing.StatusOverdue, swept[0].Status)

	require.NoError(t, svc.DeleteInvoice(ctx, invoice.ID))
	_, err = svc.GetInvoice(ctx, invoice.ID)
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

func TestRepositoryRejectsDuplicateNumbers(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	doc := billing.Document{
		ID: "a", Number: "INV-2026-0001", Type: billing.TypeInvoice, Status: billing.StatusDraft,
		DueDate: time.Now().UTC(), CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Insert(ctx, doc))

	doc.ID = "b"
	err := repo.Insert(ctx, doc)
	assert.ErrorIs(t, err, billing.ErrDuplicateNumber)
}
