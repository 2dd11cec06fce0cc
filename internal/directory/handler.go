package directory

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/billing/internal/platform/httpx"
)

// CreateClientRequest is the payload for adding a client.
type CreateClientRequest struct {
	ID      string  `json:"id,omitempty" validate:"omitempty,max=64"`
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address Address `json:"address"`
	TaxID   string  `json:"taxId,omitempty" validate:"omitempty,max=50"`
}

// CreateProductRequest is the payload for adding a catalog entry.
type CreateProductRequest struct {
	ID          string          `json:"id,omitempty" validate:"omitempty,max=64"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Category    ProductCategory `json:"category,omitempty" validate:"omitempty,oneof=Service Consulting Software Hardware Marketing Design Other"`
	TaxRate     decimal.Decimal `json:"taxRate" validate:"gte=0,lte=1"`
	Unit        string          `json:"unit,omitempty" validate:"omitempty,max=30"`
}

// Handler serves the client and product endpoints.
type Handler struct {
	logger    *slog.Logger
	clients   *Clients
	products  *Products
	validator *validator.Validate
}

// NewHandler constructs the directory handler.
func NewHandler(logger *slog.Logger, clients *Clients, products *Products) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		clients:   clients,
		products:  products,
		validator: httpx.NewValidator(),
	}
}

// MountRoutes attaches the directory API.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.listClients)
		r.Post("/", h.createClient)
		r.Get("/{id}", h.getClient)
		r.Patch("/{id}", h.updateClient)
		r.Delete("/{id}", h.deleteClient)
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Get("/categories", h.productCategories)
		r.Get("/{id}", h.getProduct)
		r.Patch("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})
}

// ============================================================================
// CLIENTS
// ============================================================================

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.clients.Search(r.Context(), r.URL.Query().Get("q")))
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.clients.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	client, err := h.clients.Add(r.Context(), Client{
		ID:      req.ID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		TaxID:   req.TaxID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var patch ClientPatch
	if !httpx.Bind(w, r, h.validator, &patch) {
		return
	}
	client, err := h.clients.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.clients.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// ============================================================================
// PRODUCTS
// ============================================================================

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if raw := query.Get("category"); raw != "" {
		httpx.JSON(w, http.StatusOK, h.products.ByCategory(r.Context(), ProductCategory(raw)))
		return
	}
	httpx.JSON(w, http.StatusOK, h.products.Search(r.Context(), query.Get("q")))
}

func (h *Handler) productCategories(w http.ResponseWriter, r *http.Request) {
	grouped := h.products.GroupedByCategory(r.Context())
	type bucket struct {
		Category ProductCategory `json:"category"`
		Products []Product       `json:"products"`
	}
	out := make([]bucket, 0, len(grouped))
	for _, category := range Categories {
		if products, ok := grouped[category]; ok {
			out = append(out, bucket{Category: category, Products: products})
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !httpx.Bind(w, r, h.validator, &req) {
		return
	}
	product, err := h.products.Add(r.Context(), Product{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		TaxRate:     req.TaxRate,
		Unit:        req.Unit,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var patch ProductPatch
	if !httpx.Bind(w, r, h.validator, &patch) {
		return
	}
	product, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	err = httpx.Classify(err, httpx.ErrNotFound, ErrNotFound)
	err = httpx.Classify(err, httpx.ErrDuplicate, ErrDuplicate)
	if !errors.Is(err, httpx.ErrNotFound) && !errors.Is(err, httpx.ErrDuplicate) {
		h.logger.Error("directory request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
