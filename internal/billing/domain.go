package billing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/billing/internal/billing/calc"
)

// DocumentType tags a document as an invoice or a quotation.
type DocumentType string

const (
	TypeInvoice   DocumentType = "Invoice"
	TypeQuotation DocumentType = "Quotation"
)

// Prefix returns the document number prefix for the type.
func (t DocumentType) Prefix() string {
	if t == TypeQuotation {
		return "QUO"
	}
	return "INV"
}

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	return t == TypeInvoice || t == TypeQuotation
}

// Status represents the lifecycle state of a document. Any status may
// follow any other.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusSent      Status = "Sent"
	StatusPaid      Status = "Paid"
	StatusOverdue   Status = "Overdue"
	StatusCancelled Status = "Cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// ParseStatus matches a status case-insensitively.
func ParseStatus(raw string) (Status, error) {
	for _, candidate := range Statuses {
		if strings.EqualFold(raw, string(candidate)) {
			return candidate, nil
		}
	}
	return "", ErrInvalidStatus
}

// LineItem is one billable row. Product fields are a snapshot taken when
// the row was added.
type LineItem struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"productId"`
	ProductName        string          `json:"productName"`
	Description        string          `json:"description"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	TaxRate            decimal.Decimal `json:"taxRate"`
	Discount           decimal.Decimal `json:"discount"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
}

// Input converts the row into calculator input.
func (li LineItem) Input() calc.LineInput {
	return calc.LineInput{
		Quantity:           li.Quantity,
		UnitPrice:          li.UnitPrice,
		TaxRate:            li.TaxRate,
		Discount:           li.Discount,
		DiscountPercentage: li.DiscountPercentage,
	}
}

// Document is an invoice or a quotation. ValidUntil and ConvertedToInvoiceID
// are only meaningful for quotations.
type Document struct {
	ID            string            `json:"id"`
	Number        string            `json:"number"`
	Type          DocumentType      `json:"type"`
	ClientID      string            `json:"clientId"`
	ClientName    string            `json:"clientName"`
	IssueDate     time.Time         `json:"issueDate"`
	DueDate       time.Time         `json:"dueDate"`
	Status        Status            `json:"status"`
	LineItems     []LineItem        `json:"lineItems"`
	Notes         string            `json:"notes,omitempty"`
	Terms         string            `json:"terms,omitempty"`
	DiscountType  calc.DiscountType `json:"discountType"`
	DiscountValue decimal.Decimal   `json:"discountValue"`
	calc.Totals

	ValidUntil           *time.Time `json:"validUntil,omitempty"`
	ConvertedToInvoiceID string     `json:"convertedToInvoiceId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers never share line item storage.
func (d Document) Clone() Document {
	out := d
	out.LineItems = cloneLineItems(d.LineItems)
	if d.ValidUntil != nil {
		v := *d.ValidUntil
		out.ValidUntil = &v
	}
	return out
}

// Converted reports whether a quotation already produced an invoice.
func (d Document) Converted() bool {
	return d.ConvertedToInvoiceID != ""
}

// LineInputs maps the rows into calculator input.
func (d Document) LineInputs() []calc.LineInput {
	inputs := make([]calc.LineInput, 0, len(d.LineItems))
	for _, item := range d.LineItems {
		inputs = append(inputs, item.Input())
	}
	return inputs
}

// Recalculate refreshes the four totals from the current rows and discount.
func (d *Document) Recalculate() {
	d.Totals = calc.CalculateDocumentTotals(d.LineInputs(), d.DiscountType, d.DiscountValue)
}

// Summary projects the document into its list view shape.
func (d Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:         d.ID,
		Number:     d.Number,
		Type:       d.Type,
		ClientName: d.ClientName,
		IssueDate:  d.IssueDate,
		DueDate:    d.DueDate,
		Status:     d.Status,
		GrandTotal: d.GrandTotal,
	}
}

// DocumentSummary is the compact list row.
type DocumentSummary struct {
	ID         string          `json:"id"`
	Number     string          `json:"number"`
	Type       DocumentType    `json:"type"`
	ClientName string          `json:"clientName"`
	IssueDate  time.Time       `json:"issueDate"`
	DueDate    time.Time       `json:"dueDate"`
	Status     Status          `json:"status"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// DocumentInput carries the caller supplied fields for a new document.
type DocumentInput struct {
	ClientID      string
	ClientName    string
	IssueDate     time.Time
	DueDate       time.Time
	Status        Status
	LineItems     []LineItem
	Notes         string
	Terms         string
	DiscountType  calc.DiscountType
	DiscountValue decimal.Decimal
	ValidUntil    *time.Time
}

// DocumentPatch is a partial update. Nil fields are left untouched.
type DocumentPatch struct {
	ClientID      *string
	ClientName    *string
	IssueDate     *time.Time
	DueDate       *time.Time
	Status        *Status
	LineItems     *[]LineItem
	Notes         *string
	Terms         *string
	DiscountType  *calc.DiscountType
	DiscountValue *decimal.Decimal
	ValidUntil    *time.Time
}

// Apply merges the patch into doc.
func (p DocumentPatch) Apply(doc *Document) {
	if p.ClientID != nil {
		doc.ClientID = *p.ClientID
	}
	if p.ClientName != nil {
		doc.ClientName = *p.ClientName
	}
	if p.IssueDate != nil {
		doc.IssueDate = *p.IssueDate
	}
	if p.DueDate != nil {
		doc.DueDate = *p.DueDate
	}
	if p.Status != nil {
		doc.Status = *p.Status
	}
	if p.LineItems != nil {
		doc.LineItems = cloneLineItems(*p.LineItems)
	}
	if p.Notes != nil {
		doc.Notes = *p.Notes
	}
	if p.Terms != nil {
		doc.Terms = *p.Terms
	}
	if p.DiscountType != nil {
		doc.DiscountType = *p.DiscountType
	}
	if p.DiscountValue != nil {
		doc.DiscountValue = *p.DiscountValue
	}
	if p.ValidUntil != nil {
		v := *p.ValidUntil
		doc.ValidUntil = &v
	}
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Type      DocumentType
	Status    Status
	DueBefore time.Time
}

// Matches reports whether doc satisfies the filter.
func (f ListFilter) Matches(doc Document) bool {
	if f.Type != "" && doc.Type != f.Type {
		return false
	}
	if f.Status != "" && doc.Status != f.Status {
		return false
	}
	if !f.DueBefore.IsZero() && !doc.DueDate.Before(f.DueBefore) {
		return false
	}
	return true
}

func cloneLineItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
