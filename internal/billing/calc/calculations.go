// Package calc holds the pure money math for billing documents.
package calc

import "github.com/shopspring/decimal"

// DiscountType selects how a document-level discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

var hundred = decimal.NewFromInt(100)

// LineInput carries the pricing fields of a single line item.
type LineInput struct {
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	TaxRate            decimal.Decimal
	Discount           decimal.Decimal
	DiscountPercentage decimal.Decimal
}

// LineItemCalculation is the derived breakdown of a line item.
type LineItemCalculation struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxableAmount  decimal.Decimal `json:"taxableAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Total          decimal.Decimal `json:"total"`
}

// Totals are the document-level aggregates.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
}

// CalculateLineItem derives subtotal, discount, tax and total for one line.
// A positive percentage discount takes precedence over the fixed discount.
// Nothing is clamped here: a discount larger than the subtotal yields a
// negative taxable amount.
func CalculateLineItem(item LineInput) LineItemCalculation {
	subtotal := item.Quantity.Mul(item.UnitPrice)

	discountAmount := item.Discount
	if item.DiscountPercentage.IsPositive() {
		discountAmount = subtotal.Mul(item.DiscountPercentage).Div(hundred)
	}

	taxable := subtotal.Sub(discountAmount)
	tax := taxable.Mul(item.TaxRate)

	return LineItemCalculation{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		Total:          taxable.Add(tax),
	}
}

// CalculateDocumentTotals sums the line breakdowns and applies the optional
// document discount. The document discount is computed on the pre-discount
// subtotal and does not reduce the tax already summed from the lines. Only
// the grand total is floored at zero.
func CalculateDocumentTotals(items []LineInput, discountType DiscountType, discountValue decimal.Decimal) Totals {
	var subtotal, totalDiscount, totalTax decimal.Decimal
	for _, item := range items {
		line := CalculateLineItem(item)
		subtotal = subtotal.Add(line.Subtotal)
		totalDiscount = totalDiscount.Add(line.DiscountAmount)
		totalTax = totalTax.Add(line.TaxAmount)
	}

	if discountValue.IsPositive() {
		if discountType == DiscountPercentage {
			totalDiscount = totalDiscount.Add(subtotal.Mul(discountValue).Div(hundred))
		} else {
			totalDiscount = totalDiscount.Add(discountValue)
		}
	}

	grand := subtotal.Sub(totalDiscount).Add(totalTax)
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	return Totals{
		Subtotal:      subtotal,
		TotalDiscount: totalDiscount,
		TotalTax:      totalTax,
		GrandTotal:    grand,
	}
}

// Valid reports whether t is one of the known discount types.
func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}
