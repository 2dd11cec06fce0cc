package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/billing/internal/billing/calc"
)

type LineItemRequest struct {
	ID                 string          `json:"id,omitempty" validate:"omitempty,max=64"`
	ProductID          string          `json:"productId,omitempty" validate:"omitempty,max=64"`
	ProductName        string          `json:"productName,omitempty" validate:"required_without=ProductID,max=200"`
	Description        string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Quantity           decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice          decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	TaxRate            decimal.Decimal `json:"taxRate" validate:"gte=0,lte=1"`
	Discount           decimal.Decimal `json:"discount" validate:"gte=0"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage" validate:"gte=0,lte=100"`
}

// needsSnapshot reports whether the row only names a product and must be
// filled from the catalog.
func (r LineItemRequest) needsSnapshot() bool {
	return r.ProductID != "" && r.ProductName == ""
}

func (r LineItemRequest) toLineItem() LineItem {
	return LineItem{
		ID:                 r.ID,
		ProductID:          r.ProductID,
		ProductName:        r.ProductName,
		Description:        r.Description,
		Quantity:           r.Quantity,
		UnitPrice:          r.UnitPrice,
		TaxRate:            r.TaxRate,
		Discount:           r.Discount,
		DiscountPercentage: r.DiscountPercentage,
	}
}

type CreateDocumentRequest struct {
	ClientID      string            `json:"clientId" validate:"required,max=64"`
	ClientName    string            `json:"clientName,omitempty" validate:"omitempty,max=200"`
	IssueDate     time.Time         `json:"issueDate" validate:"required"`
	DueDate       time.Time         `json:"dueDate" validate:"required"`
	ValidUntil    *time.Time        `json:"validUntil,omitempty"`
	Status        Status            `json:"status,omitempty" validate:"omitempty,oneof=Draft Sent Paid Overdue Cancelled"`
	LineItems     []LineItemRequest `json:"lineItems" validate:"dive"`
	Notes         string            `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Terms         string            `json:"terms,omitempty" validate:"omitempty,max=2000"`
	DiscountType  calc.DiscountType `json:"discountType,omitempty" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue decimal.Decimal   `json:"discountValue" validate:"gte=0"`
}

type UpdateDocumentRequest struct {
	ClientID      *string            `json:"clientId,omitempty" validate:"omitempty,min=1,max=64"`
	ClientName    *string            `json:"clientName,omitempty" validate:"omitempty,max=200"`
	IssueDate     *time.Time         `json:"issueDate,omitempty"`
	DueDate       *time.Time         `json:"dueDate,omitempty"`
	ValidUntil    *time.Time         `json:"validUntil,omitempty"`
	Status        *Status            `json:"status,omitempty" validate:"omitempty,oneof=Draft Sent Paid Overdue Cancelled"`
	LineItems     *[]LineItemRequest `json:"lineItems,omitempty" validate:"omitempty,dive"`
	Notes         *string            `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Terms         *string            `json:"terms,omitempty" validate:"omitempty,max=2000"`
	DiscountType  *calc.DiscountType `json:"discountType,omitempty" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue *decimal.Decimal   `json:"discountValue,omitempty" validate:"omitempty,gte=0"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=Draft Sent Paid Overdue Cancelled"`
}

type CalculateTotalsRequest struct {
	LineItems     []LineItemRequest `json:"lineItems" validate:"dive"`
	DiscountType  calc.DiscountType `json:"discountType,omitempty" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue decimal.Decimal   `json:"discountValue" validate:"gte=0"`
}
