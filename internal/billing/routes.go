package billing

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the billing API.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/calculate/line-item", h.calculateLineItem)
	r.Post("/calculate/totals", h.calculateTotals)

	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.listDocuments(TypeInvoice))
		r.Post("/", h.createDocument(TypeInvoice))
		r.Get("/next-number", h.nextNumber(TypeInvoice))
		r.Get("/{id}", h.getDocument(TypeInvoice))
		r.Patch("/{id}", h.updateDocument(TypeInvoice))
		r.Delete("/{id}", h.deleteDocument(TypeInvoice))
		r.Post("/{id}/status", h.updateStatus(TypeInvoice))
	})

	r.Route("/quotations", func(r chi.Router) {
		r.Get("/", h.listDocuments(TypeQuotation))
		r.Post("/", h.createDocument(TypeQuotation))
		r.Get("/next-number", h.nextNumber(TypeQuotation))
		r.Get("/{id}", h.getDocument(TypeQuotation))
		r.Patch("/{id}", h.updateDocument(TypeQuotation))
		r.Delete("/{id}", h.deleteDocument(TypeQuotation))
		r.Post("/{id}/status", h.updateStatus(TypeQuotation))
		r.Post("/{id}/convert", h.convertQuotation)
	})

	r.Get("/documents", h.listDocuments(""))
	r.Get("/documents/{id}", h.getDocument(""))
	r.Get("/summary", h.summary)
}
