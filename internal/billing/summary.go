package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/billing/internal/platform/cache"
)

// StatusTotal aggregates the documents of one status.
type StatusTotal struct {
	Status Status          `json:"status"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// TypeSummary aggregates one collection. TotalValue is the sum of grand totals.
type TypeSummary struct {
	Type       DocumentType    `json:"type"`
	Count      int             `json:"count"`
	TotalValue decimal.Decimal `json:"totalValue"`
	Display    string          `json:"display"`
	ByStatus   []StatusTotal   `json:"byStatus"`
}

// Summary is the dashboard view over both collections.
type Summary struct {
	Invoices          TypeSummary     `json:"invoices"`
	Quotations        TypeSummary     `json:"quotations"`
	Outstanding       decimal.Decimal `json:"outstanding"`
	PendingConversion int             `json:"pendingConversion"`
	GeneratedAt       time.Time       `json:"generatedAt"`
}

// SummaryService computes summaries, caching them until the next mutation.
type SummaryService struct {
	repo  Repository
	cache *cache.Versioned
	clock func() time.Time
}

// NewSummaryService constructs the service. A nil cache computes on every call.
func NewSummaryService(repo Repository, c *cache.Versioned) *SummaryService {
	return &SummaryService{
		repo:  repo,
		cache: c,
		clock: func() time.Time { return time.Now().UTC() },
	}
}

// Summary returns the current summary.
func (s *SummaryService) Summary(ctx context.Context) (Summary, error) {
	key, err := s.cache.BuildKey(ctx, "summary")
	if err != nil {
		return Summary{}, fmt.Errorf("summary cache key: %w", err)
	}
	var out Summary
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.compute(ctx)
	})
	if err != nil {
		return Summary{}, fmt.Errorf("load summary: %w", err)
	}
	return out, nil
}

// Invalidator returns a notifier that drops cached summaries on every event.
func (s *SummaryService) Invalidator(logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return NotifierFunc(func(ctx context.Context, event Event) {
		if err := s.cache.Bump(ctx); err != nil {
			logger.Warn("bump summary cache", slog.String("event", string(event.Kind)), slog.Any("error", err))
		}
	})
}

func (s *SummaryService) compute(ctx context.Context) (Summary, error) {
	var invoices, quotations []Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = s.repo.List(gctx, ListFilter{Type: TypeInvoice})
		return err
	})
	g.Go(func() error {
		var err error
		quotations, err = s.repo.List(gctx, ListFilter{Type: TypeQuotation})
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	out := Summary{
		Invoices:    summarise(TypeInvoice, invoices),
		Quotations:  summarise(TypeQuotation, quotations),
		Outstanding: decimal.Zero,
		GeneratedAt: s.clock(),
	}
	for _, doc := range invoices {
		if doc.Status == StatusSent || doc.Status == StatusOverdue {
			out.Outstanding = out.Outstanding.Add(doc.GrandTotal)
		}
	}
	for _, doc := range quotations {
		if !doc.Converted() && doc.Status != StatusCancelled {
			out.PendingConversion++
		}
	}
	return out, nil
}

func summarise(docType DocumentType, docs []Document) TypeSummary {
	byStatus := make(map[Status]*StatusTotal, len(Statuses))
	for _, status := range Statuses {
		byStatus[status] = &StatusTotal{Status: status, Total: decimal.Zero}
	}

	out := TypeSummary{Type: docType, TotalValue: decimal.Zero}
	for _, doc := range docs {
		out.Count++
		out.TotalValue = out.TotalValue.Add(doc.GrandTotal)
		if bucket, ok := byStatus[doc.Status]; ok {
			bucket.Count++
			bucket.Total = bucket.Total.Add(doc.GrandTotal)
		}
	}
	out.Display = FormatCurrency(out.TotalValue, "$", 2)
	out.ByStatus = make([]StatusTotal, 0, len(Statuses))
	for _, status := range Statuses {
		out.ByStatus = append(out.ByStatus, *byStatus[status])
	}
	return out
}
