package billing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/billing/internal/platform/httpx"
)

// Handler exposes the billing JSON API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	summaries *SummaryService
	validator *validator.Validate
}

// NewHandler constructs the billing handler. summaries may be nil.
func NewHandler(logger *slog.Logger, service *Service, summaries *SummaryService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		summaries: summaries,
		validator: httpx.NewValidator(),
	}
}

func (h *Handler) calculateLineItem(w http.ResponseWriter, r *http.Request) {
	var req LineItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	items, err := h.lineItems(r.Context(), []LineItemRequest{req})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"lineItem":    items[0],
		"calculation": h.service.CalculateLineItem(items[0]),
	})
}

func (h *Handler) calculateTotals(w http.ResponseWriter, r *http.Request) {
	var req CalculateTotalsRequest
	if !h.decode(w, r, &req) {
		return
	}
	items, err := h.lineItems(r.Context(), req.LineItems)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.CalculateTotals(items, req.DiscountType, req.DiscountValue))
}

func (h *Handler) listDocuments(docType DocumentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ListFilter{Type: docType}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := ParseStatus(raw)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown status "+raw)
				return
			}
			filter.Status = status
		}

		var (
			docs []Document
			err  error
		)
		if docType == "" {
			docs, err = h.service.DocumentsByStatus(r.Context(), "", filter.Status)
		} else {
			docs, err = h.service.List(r.Context(), filter)
		}
		if err != nil {
			h.fail(w, r, err)
			return
		}

		if r.URL.Query().Get("view") == "summary" {
			rows := make([]DocumentSummary, 0, len(docs))
			for _, doc := range docs {
				rows = append(rows, doc.Summary())
			}
			httpx.JSON(w, http.StatusOK, rows)
			return
		}
		httpx.JSON(w, http.StatusOK, docs)
	}
}

func (h *Handler) nextNumber(docType DocumentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := h.service.NextDocumentNumber(r.Context(), docType)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"number": number})
	}
}

func (h *Handler) createDocument(docType DocumentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDocumentRequest
		if !h.decode(w, r, &req) {
			return
		}
		items, err := h.lineItems(r.Context(), req.LineItems)
		if err != nil {
			h.fail(w, r, err)
			return
		}

		in := DocumentInput{
			ClientID:      req.ClientID,
			ClientName:    req.ClientName,
			IssueDate:     req.IssueDate,
			DueDate:       req.DueDate,
			Status:        req.Status,
			LineItems:     items,
			Notes:         req.Notes,
			Terms:         req.Terms,
			DiscountType:  req.DiscountType,
			DiscountValue: req.DiscountValue,
		}

		var doc *Document
		if docType == TypeQuotation {
			in.ValidUntil = req.ValidUntil
			doc, err = h.service.CreateQuotation(r.Context(), in)
		} else {
			doc, err = h.service.CreateInvoice(r.Context(), in)
		}
		if err != nil {
			h.fail(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, doc)
	}
}

func (h *Handler) getDocument(docType DocumentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.service.get(r.Context(), docType, chi.URLParam(r, "id"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) updateDocument(docType DocumentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateDocumentRequest
		if !h.decode(w, r, &req) {
			return
		}
		patch := DocumentPatch{
			ClientID:      req.ClientID,
			ClientName:    req.ClientName,
			IssueDate:     req.IssueDate,
			DueDate:       req.DueDate,
			Status:        req.Status,
			Notes:         req.Notes,
			Terms:         req.Terms,
			DiscountType:  req.DiscountType,
			DiscountValue: req.DiscountValue,
		}
		if docType == TypeQuotation {
			patch.ValidUntil = req.ValidUntil
		}
		if req.LineItems != nil {
			items, err := h.lineItems(r.Context(), *req.LineItems)
			if err != nil {
				h.fail(w, r, err)
				return
			}
			patch.LineItems = &items
		}

		doc, err := h.service.update(r.Context(), docType, chi.URLParam(r, "id"), patch)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) updateStatus(docType DocumentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateStatusRequest
		if !h.decode(w, r, &req) {
			return
		}
		doc, err := h.service.update(r.Context(), docType, chi.URLParam(r, "id"), DocumentPatch{Status: &req.Status})
		if err != nil {
			h.fail(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) deleteDocument(docType DocumentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.delete(r.Context(), docType, chi.URLParam(r, "id")); err != nil {
			h.fail(w, r, err)
			return
		}
		httpx.NoContent(w)
	}
}

func (h *Handler) convertQuotation(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.ConvertQuotationToInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if h.summaries == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "summary not configured")
		return
	}
	summary, err := h.summaries.Summary(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// lineItems converts request rows, filling product-only rows from the catalog.
func (h *Handler) lineItems(ctx context.Context, reqs []LineItemRequest) ([]LineItem, error) {
	items := make([]LineItem, 0, len(reqs))
	for _, req := range reqs {
		if req.needsSnapshot() {
			item, err := h.service.LineItemForProduct(ctx, req.ProductID, req.Quantity)
			if err != nil {
				return nil, err
			}
			if !req.Discount.IsZero() || !req.DiscountPercentage.IsZero() {
				item.Discount = req.Discount
				item.DiscountPercentage = req.DiscountPercentage
			}
			items = append(items, item)
			continue
		}
		items = append(items, req.toLineItem())
	}
	return items, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	return httpx.Bind(w, r, h.validator, target)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	err = httpx.Classify(err, httpx.ErrNotFound, ErrNotFound)
	err = httpx.Classify(err, httpx.ErrValidation, ErrProductNotFound, ErrInvalidStatus)
	err = httpx.Classify(err, httpx.ErrConflict, ErrWrongDocumentType, ErrDuplicateNumber)
	if !errors.Is(err, httpx.ErrNotFound) && !errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrConflict) {
		h.logger.Error("billing request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
