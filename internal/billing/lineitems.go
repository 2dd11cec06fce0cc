package billing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/billing/internal/directory"
)

// NewLineItemFromProduct snapshots the product's name, description, price
// and tax rate into a new row. Later catalog edits do not reach the row.
func NewLineItemFromProduct(product directory.Product, quantity decimal.Decimal) LineItem {
	return LineItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Description: product.Description,
		Quantity:    quantity,
		UnitPrice:   product.Price,
		TaxRate:     product.TaxRate,
	}
}

// LineItemForProduct builds a row from the catalog entry with the given id.
func (s *Service) LineItemForProduct(ctx context.Context, productID string, quantity decimal.Decimal) (LineItem, error) {
	if s.products == nil {
		return LineItem{}, fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
	}
	product, ok := s.products.ProductByID(ctx, productID)
	if !ok {
		return LineItem{}, fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
	}
	item := NewLineItemFromProduct(product, quantity)
	item.ID = s.newID()
	return item, nil
}
