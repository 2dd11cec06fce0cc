package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/billing/internal/billing/calc"
	"github.com/odyssey-erp/billing/internal/directory"
)

const (
	// conversionDueIn is the payment window of an invoice created from a quotation.
	conversionDueIn = 30 * 24 * time.Hour

	maxNumberAttempts = 3
)

// ClientDirectory resolves clients for denormalised display names.
type ClientDirectory interface {
	ClientByID(ctx context.Context, id string) (directory.Client, bool)
}

// ProductCatalog resolves products for line item snapshots.
type ProductCatalog interface {
	ProductByID(ctx context.Context, id string) (directory.Product, bool)
}

// ServiceConfig carries optional collaborators. Zero values select defaults.
type ServiceConfig struct {
	Clock     func() time.Time
	NewID     func() string
	Sequencer Sequencer
	Notifier  Notifier
	Clients   ClientDirectory
	Products  ProductCatalog
	Logger    *slog.Logger
}

// Service manages the document lifecycle on top of a Repository.
type Service struct {
	repo      Repository
	clock     func() time.Time
	newID     func() string
	sequencer Sequencer
	notifier  Notifier
	clients   ClientDirectory
	products  ProductCatalog
	logger    *slog.Logger
}

// NewService constructs the lifecycle manager.
func NewService(repo Repository, cfg ServiceConfig) *Service {
	s := &Service{
		repo:      repo,
		clock:     cfg.Clock,
		newID:     cfg.NewID,
		sequencer: cfg.Sequencer,
		notifier:  cfg.Notifier,
		clients:   cfg.Clients,
		products:  cfg.Products,
		logger:    cfg.Logger,
	}
	if s.clock == nil {
		s.clock = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = NewID
	}
	if s.sequencer == nil {
		s.sequencer = CountSequencer{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// NewID returns a time ordered identifier with a random suffix.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ============================================================================
// CALCULATION PREVIEWS
// ============================================================================

// CalculateLineItem previews the breakdown of a single row.
func (s *Service) CalculateLineItem(item LineItem) calc.LineItemCalculation {
	return calc.CalculateLineItem(item.Input())
}

// CalculateTotals previews document totals without persisting anything.
func (s *Service) CalculateTotals(items []LineItem, discountType calc.DiscountType, discountValue decimal.Decimal) calc.Totals {
	doc := Document{LineItems: items, DiscountType: discountType, DiscountValue: discountValue}
	return calc.CalculateDocumentTotals(doc.LineInputs(), discountType, discountValue)
}

// NextDocumentNumber previews the number the next document of the type
// would receive. It reserves nothing.
func (s *Service) NextDocumentNumber(ctx context.Context, docType DocumentType) (string, error) {
	now := s.clock()
	seq, err := s.sequencer.Peek(ctx, s.repo, docType, now.Year())
	if err != nil {
		return "", fmt.Errorf("peek document number: %w", err)
	}
	return FormatDocumentNumber(docType, now.Year(), seq), nil
}

// ============================================================================
// CREATE
// ============================================================================

// CreateInvoice stores a new invoice with computed totals.
func (s *Service) CreateInvoice(ctx context.Context, in DocumentInput) (*Document, error) {
	return s.create(ctx, TypeInvoice, in)
}

// CreateQuotation stores a new quotation with computed totals.
func (s *Service) CreateQuotation(ctx context.Context, in DocumentInput) (*Document, error) {
	return s.create(ctx, TypeQuotation, in)
}

func (s *Service) create(ctx context.Context, docType DocumentType, in DocumentInput) (*Document, error) {
	doc := s.draftFromInput(ctx, docType, in)

	var created Document
	err := s.inNumberedTx(ctx, func(ctx context.Context, tx Repository) error {
		var err error
		created, err = s.insert(ctx, tx, doc, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", docType, err)
	}

	s.logger.Info("document created",
		slog.String("type", string(created.Type)),
		slog.String("id", created.ID),
		slog.String("number", created.Number),
	)
	s.notify(ctx, EventCreated, created)
	return &created, nil
}

func (s *Service) draftFromInput(ctx context.Context, docType DocumentType, in DocumentInput) Document {
	doc := Document{
		Type:          docType,
		ClientID:      in.ClientID,
		ClientName:    in.ClientName,
		IssueDate:     in.IssueDate,
		DueDate:       in.DueDate,
		Status:        in.Status,
		LineItems:     cloneLineItems(in.LineItems),
		Notes:         in.Notes,
		Terms:         in.Terms,
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
	}
	if in.ValidUntil != nil {
		v := *in.ValidUntil
		doc.ValidUntil = &v
	}
	if doc.Status == "" {
		doc.Status = StatusDraft
	}
	if doc.DiscountType == "" {
		doc.DiscountType = calc.DiscountPercentage
	}
	if doc.ClientName == "" && doc.ClientID != "" && s.clients != nil {
		if client, ok := s.clients.ClientByID(ctx, doc.ClientID); ok {
			doc.ClientName = client.Name
		}
	}
	return doc
}

// insert numbers and stamps doc inside tx. When carried is nil the totals
// are computed from the rows, otherwise carried is stored as is.
func (s *Service) insert(ctx context.Context, tx Repository, doc Document, carried *calc.Totals) (Document, error) {
	now := s.clock()
	seq, err := s.sequencer.Next(ctx, tx, doc.Type, now.Year())
	if err != nil {
		return Document{}, fmt.Errorf("next document number: %w", err)
	}

	doc.ID = s.newID()
	doc.Number = FormatDocumentNumber(doc.Type, now.Year(), seq)
	doc.LineItems = s.withLineIDs(doc.LineItems)
	if carried != nil {
		doc.Totals = *carried
	} else {
		doc.Recalculate()
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if err := tx.Insert(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// inNumberedTx retries fn when the store rejects a duplicate document number.
func (s *Service) inNumberedTx(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error {
	var err error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		err = s.repo.WithTx(ctx, fn)
		if !errors.Is(err, ErrDuplicateNumber) {
			return err
		}
		s.logger.Warn("document number collision", slog.Int("attempt", attempt))
	}
	return err
}

// ============================================================================
// UPDATE
// ============================================================================

// UpdateDocument merges patch into the document with the given id, whatever
// its type, and recomputes all totals.
func (s *Service) UpdateDocument(ctx context.Context, id string, patch DocumentPatch) (*Document, error) {
	return s.update(ctx, "", id, patch)
}

// UpdateInvoice is UpdateDocument restricted to invoices.
func (s *Service) UpdateInvoice(ctx context.Context, id string, patch DocumentPatch) (*Document, error) {
	return s.update(ctx, TypeInvoice, id, patch)
}

// UpdateQuotation is UpdateDocument restricted to quotations.
func (s *Service) UpdateQuotation(ctx context.Context, id string, patch DocumentPatch) (*Document, error) {
	return s.update(ctx, TypeQuotation, id, patch)
}

// UpdateStatus sets the status. Every transition is allowed.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Document, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("update status %q: %w", status, ErrInvalidStatus)
	}
	return s.update(ctx, "", id, DocumentPatch{Status: &status})
}

func (s *Service) update(ctx context.Context, docType DocumentType, id string, patch DocumentPatch) (*Document, error) {
	var updated Document
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		doc, err := tx.Get(ctx, docType, id)
		if err != nil {
			return err
		}
		patch.Apply(&doc)
		doc.LineItems = s.withLineIDs(doc.LineItems)
		doc.UpdatedAt = s.clock()
		doc.Recalculate()
		updated = doc
		return tx.Replace(ctx, doc)
	})
	if err != nil {
		return nil, fmt.Errorf("update document %s: %w", id, err)
	}

	s.logger.Debug("document updated", slog.String("id", updated.ID), slog.String("status", string(updated.Status)))
	s.notify(ctx, EventUpdated, updated)
	return &updated, nil
}

// ============================================================================
// CONVERSION
// ============================================================================

// ConvertQuotationToInvoice creates a draft invoice from a quotation and
// links the quotation to it. The invoice carries the quotation's stored
// totals. Converting the same quotation twice creates a second invoice.
func (s *Service) ConvertQuotationToInvoice(ctx context.Context, quotationID string) (*Document, error) {
	var invoice, quotation Document
	err := s.inNumberedTx(ctx, func(ctx context.Context, tx Repository) error {
		q, err := tx.Get(ctx, "", quotationID)
		if err != nil {
			return err
		}
		if q.Type != TypeQuotation {
			return ErrWrongDocumentType
		}
		if q.Converted() {
			s.logger.Warn("quotation already converted",
				slog.String("quotation_id", q.ID),
				slog.String("invoice_id", q.ConvertedToInvoiceID),
			)
		}

		now := s.clock()
		draft := Document{
			Type:          TypeInvoice,
			ClientID:      q.ClientID,
			ClientName:    q.ClientName,
			IssueDate:     now,
			DueDate:       now.Add(conversionDueIn),
			Status:        StatusDraft,
			LineItems:     cloneLineItems(q.LineItems),
			Notes:         q.Notes,
			Terms:         q.Terms,
			DiscountType:  q.DiscountType,
			DiscountValue: q.DiscountValue,
		}
		totals := q.Totals
		invoice, err = s.insert(ctx, tx, draft, &totals)
		if err != nil {
			return err
		}

		q.ConvertedToInvoiceID = invoice.ID
		q.UpdatedAt = s.clock()
		quotation = q
		return tx.Replace(ctx, q)
	})
	if err != nil {
		return nil, fmt.Errorf("convert quotation %s: %w", quotationID, err)
	}

	s.logger.Info("quotation converted",
		slog.String("quotation_id", quotation.ID),
		slog.String("invoice_id", invoice.ID),
		slog.String("invoice_number", invoice.Number),
	)
	s.notify(ctx, EventCreated, invoice)
	s.notify(ctx, EventConverted, quotation)
	return &invoice, nil
}

// ============================================================================
// DELETE
// ============================================================================

// DeleteInvoice removes an invoice.
func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	return s.delete(ctx, TypeInvoice, id)
}

// DeleteQuotation removes a quotation.
func (s *Service) DeleteQuotation(ctx context.Context, id string) error {
	return s.delete(ctx, TypeQuotation, id)
}

func (s *Service) delete(ctx context.Context, docType DocumentType, id string) error {
	if err := s.repo.Delete(ctx, docType, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", docType, id, err)
	}
	s.logger.Info("document deleted", slog.String("type", string(docType)), slog.String("id", id))
	s.notify(ctx, EventDeleted, Document{ID: id, Type: docType})
	return nil
}

// ============================================================================
// QUERIES
// ============================================================================

// GetByID looks a document up in either collection.
func (s *Service) GetByID(ctx context.Context, id string) (*Document, error) {
	return s.get(ctx, "", id)
}

// GetInvoice looks an invoice up by id.
func (s *Service) GetInvoice(ctx context.Context, id string) (*Document, error) {
	return s.get(ctx, TypeInvoice, id)
}

// GetQuotation looks a quotation up by id.
func (s *Service) GetQuotation(ctx context.Context, id string) (*Document, error) {
	return s.get(ctx, TypeQuotation, id)
}

func (s *Service) get(ctx context.Context, docType DocumentType, id string) (*Document, error) {
	doc, err := s.repo.Get(ctx, docType, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Debug("document lookup miss", slog.String("id", id))
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return &doc, nil
}

// Invoices returns every invoice in insertion order.
func (s *Service) Invoices(ctx context.Context) ([]Document, error) {
	return s.List(ctx, ListFilter{Type: TypeInvoice})
}

// Quotations returns every quotation in insertion order.
func (s *Service) Quotations(ctx context.Context) ([]Document, error) {
	return s.List(ctx, ListFilter{Type: TypeQuotation})
}

// AllDocuments returns invoices followed by quotations.
func (s *Service) AllDocuments(ctx context.Context) ([]Document, error) {
	invoices, err := s.Invoices(ctx)
	if err != nil {
		return nil, err
	}
	quotations, err := s.Quotations(ctx)
	if err != nil {
		return nil, err
	}
	return append(invoices, quotations...), nil
}

// InvoicesByStatus returns invoices with exactly the given status.
func (s *Service) InvoicesByStatus(ctx context.Context, status Status) ([]Document, error) {
	return s.List(ctx, ListFilter{Type: TypeInvoice, Status: status})
}

// DocumentsByStatus returns documents of the type with exactly the given
// status. An empty type matches both collections.
func (s *Service) DocumentsByStatus(ctx context.Context, docType DocumentType, status Status) ([]Document, error) {
	if docType == "" {
		invoices, err := s.List(ctx, ListFilter{Type: TypeInvoice, Status: status})
		if err != nil {
			return nil, err
		}
		quotations, err := s.List(ctx, ListFilter{Type: TypeQuotation, Status: status})
		if err != nil {
			return nil, err
		}
		return append(invoices, quotations...), nil
	}
	return s.List(ctx, ListFilter{Type: docType, Status: status})
}

// List returns documents matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Document, error) {
	docs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// ============================================================================
// MAINTENANCE
// ============================================================================

// SweepOverdue moves every sent invoice due before asOf to Overdue and
// returns the updated invoices.
func (s *Service) SweepOverdue(ctx context.Context, asOf time.Time) ([]Document, error) {
	candidates, err := s.List(ctx, ListFilter{Type: TypeInvoice, Status: StatusSent, DueBefore: asOf})
	if err != nil {
		return nil, err
	}
	updated := make([]Document, 0, len(candidates))
	for _, doc := range candidates {
		out, err := s.UpdateStatus(ctx, doc.ID, StatusOverdue)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return updated, err
		}
		updated = append(updated, *out)
	}
	return updated, nil
}

func (s *Service) withLineIDs(items []LineItem) []LineItem {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = s.newID()
		}
	}
	return items
}

func (s *Service) notify(ctx context.Context, kind EventKind, doc Document) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, Event{
		Kind:         kind,
		DocumentType: doc.Type,
		DocumentID:   doc.ID,
		Number:       doc.Number,
		At:           s.clock(),
	})
}
