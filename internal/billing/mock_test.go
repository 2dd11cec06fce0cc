package billing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/billing/internal/directory"
)

// ============================================================================
// MOCK DEPENDENCIES
// ============================================================================

type mockRepository struct {
	mu   sync.Mutex
	docs []Document

	// failInserts makes the next n inserts fail with ErrDuplicateNumber.
	failInserts int
	inserts     int
}

func newMockRepository(seed ...Document) *mockRepository {
	return &mockRepository{docs: append([]Document(nil), seed...)}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error {
	m.mu.Lock()
	snapshot := append([]Document(nil), m.docs...)
	m.mu.Unlock()

	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.docs = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *mockRepository) Insert(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.failInserts > 0 {
		m.failInserts--
		return fmt.Errorf("insert %s: %w", doc.Number, ErrDuplicateNumber)
	}
	for _, existing := range m.docs {
		if existing.Type == doc.Type && existing.Number == doc.Number {
			return fmt.Errorf("insert %s: %w", doc.Number, ErrDuplicateNumber)
		}
	}
	m.docs = append(m.docs, doc.Clone())
	return nil
}

func (m *mockRepository) Get(_ context.Context, docType DocumentType, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.docs {
		if doc.ID == id && (docType == "" || doc.Type == docType) {
			return doc.Clone(), nil
		}
	}
	return Document{}, ErrNotFound
}

func (m *mockRepository) Replace(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.docs {
		if m.docs[i].ID == doc.ID && m.docs[i].Type == doc.Type {
			m.docs[i] = doc.Clone()
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRepository) Delete(_ context.Context, docType DocumentType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, doc := range m.docs {
		if doc.ID == id && (docType == "" || doc.Type == docType) {
			m.docs = append(m.docs[:i:i], m.docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRepository) List(_ context.Context, filter ListFilter) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Document, 0)
	for _, docType := range []DocumentType{TypeInvoice, TypeQuotation} {
		for _, doc := range m.docs {
			if doc.Type == docType && filter.Matches(doc) {
				out = append(out, doc.Clone())
			}
		}
	}
	return out, nil
}

func (m *mockRepository) Count(_ context.Context, docType DocumentType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, doc := range m.docs {
		if doc.Type == docType {
			count++
		}
	}
	return count, nil
}

// eventRecorder collects notifications in order.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Notify(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

// ============================================================================
// TEST SERVICE
// ============================================================================

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

type testService struct {
	*Service
	repo   *mockRepository
	events *eventRecorder
	now    time.Time
}

func newTestService(t *testing.T, seed ...Document) *testService {
	t.Helper()
	ts := &testService{
		repo:   newMockRepository(seed...),
		events: &eventRecorder{},
		now:    testNow,
	}
	ids := 0
	ts.Service = NewService(ts.repo, ServiceConfig{
		Clock: func() time.Time { return ts.now },
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
		Notifier: ts.events,
		Clients:  directory.NewClients(directory.DemoClients()),
		Products: directory.NewProducts(directory.DemoProducts()),
	})
	return ts
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func consultingInput() DocumentInput {
	return DocumentInput{
		ClientID:  "CLT001",
		IssueDate: testNow,
		DueDate:   testNow.AddDate(0, 0, 30),
		LineItems: []LineItem{{
			ProductName: "Web Development - Premium",
			Quantity:    dec("40"),
			UnitPrice:   dec("175"),
			TaxRate:     dec("0.10"),
		}},
	}
}

func ptr[T any](v T) *T {
	return &v
}
