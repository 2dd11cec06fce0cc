package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/billing/internal/billing/calc"
)

func seedDay(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return t
}

func amount(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func seedLine(id, productID, name, description, qty, price, taxRate, discountPct string) LineItem {
	return LineItem{
		ID:                 id,
		ProductID:          productID,
		ProductName:        name,
		Description:        description,
		Quantity:           amount(qty),
		UnitPrice:          amount(price),
		TaxRate:            amount(taxRate),
		Discount:           decimal.Zero,
		DiscountPercentage: amount(discountPct),
	}
}

func seedTotals(subtotal, discount, tax, grand string) calc.Totals {
	return calc.Totals{
		Subtotal:      amount(subtotal),
		TotalDiscount: amount(discount),
		TotalTax:      amount(tax),
		GrandTotal:    amount(grand),
	}
}

// DemoDocuments returns the sample invoices and quotations. Totals are stored
// exactly as issued.
func DemoDocuments() []Document {
	quoValid1 := seedDay("2026-01-31")
	quoValid2 := seedDay("2026-02-05")
	return []Document{
		{
			ID: "INV-001", Number: "INV-2026-0001", Type: TypeInvoice,
			ClientID: "CLT001", ClientName: "Acme Corporation",
			IssueDate: seedDay("2026-01-02"), DueDate: seedDay("2026-02-01"), Status: StatusSent,
			LineItems: []LineItem{
				seedLine("LI-001", "PRD002", "Web Development - Premium", "Custom e-commerce platform development", "40", "175", "0.10", "0"),
				seedLine("LI-002", "PRD012", "UI/UX Design", "User interface design for e-commerce platform", "20", "140", "0.10", "5"),
			},
			Notes:        "Thank you for your business!",
			Terms:        "Payment due within 30 days. Late payments subject to 1.5% monthly interest.",
			DiscountType: calc.DiscountPercentage, DiscountValue: decimal.Zero,
			Totals:    seedTotals("9800", "140", "966", "10626"),
			CreatedAt: seedDay("2026-01-02"), UpdatedAt: seedDay("2026-01-02"),
		},
		{
			ID: "INV-002", Number: "INV-2026-0002", Type: TypeInvoice,
			ClientID: "CLT002", ClientName: "TechStart Inc.",
			IssueDate: seedDay("2026-01-05"), DueDate: seedDay("2026-02-04"), Status: StatusPaid,
			LineItems: []LineItem{
				seedLine("LI-003", "PRD009", "CMS License - Enterprise", "Annual enterprise CMS license", "1", "1999", "0.08", "0"),
			},
			Notes:        "Paid via bank transfer on 2026-01-15",
			Terms:        "Payment due within 30 days.",
			DiscountType: calc.DiscountFixed, DiscountValue: decimal.Zero,
			Totals:    seedTotals("1999", "0", "159.92", "2158.92"),
			CreatedAt: seedDay("2026-01-05"), UpdatedAt: seedDay("2026-01-15"),
		},
		{
			ID: "INV-003", Number: "INV-2026-0003", Type: TypeInvoice,
			ClientID: "CLT005", ClientName: "Digital Dynamics",
			IssueDate: seedDay("2026-01-08"), DueDate: seedDay("2026-01-22"), Status: StatusDraft,
			LineItems: []LineItem{
				seedLine("LI-004", "PRD022", "Maintenance Package", "Monthly maintenance - January 2026", "1", "750", "0.10", "0"),
			},
			Terms:        "Payment due within 14 days.",
			DiscountType: calc.DiscountPercentage, DiscountValue: decimal.Zero,
			Totals:    seedTotals("750", "0", "75", "825"),
			CreatedAt: seedDay("2026-01-08"), UpdatedAt: seedDay("2026-01-08"),
		},
		{
			ID: "QUO-001", Number: "QUO-2026-0001", Type: TypeQuotation,
			ClientID: "CLT003", ClientName: "Global Solutions Ltd",
			IssueDate: seedDay("2026-01-03"), DueDate: seedDay("2026-02-02"), ValidUntil: &quoValid1, Status: StatusSent,
			LineItems: []LineItem{
				seedLine("LI-005", "PRD005", "Technical Consulting", "Cloud migration strategy and planning", "24", "200", "0.10", "0"),
				seedLine("LI-006", "PRD007", "DevOps Consulting", "CI/CD pipeline implementation", "16", "180", "0.10", "0"),
			},
			Notes:        "Quote valid for 28 days from issue date.",
			Terms:        "Payment terms to be negotiated upon acceptance.",
			DiscountType: calc.DiscountPercentage, DiscountValue: amount("10"),
			Totals:    seedTotals("7680", "768", "691.20", "7603.20"),
			CreatedAt: seedDay("2026-01-03"), UpdatedAt: seedDay("2026-01-03"),
		},
		{
			ID: "QUO-002", Number: "QUO-2026-0002", Type: TypeQuotation,
			ClientID: "CLT009", ClientName: "Alpha Consulting Group",
			IssueDate: seedDay("2026-01-06"), DueDate: seedDay("2026-02-05"), ValidUntil: &quoValid2, Status: StatusDraft,
			LineItems: []LineItem{
				seedLine("LI-007", "PRD013", "Brand Identity Package", "Complete brand redesign and guidelines", "1", "3500", "0.10", "0"),
			},
			Notes:        "Includes logo design, color palette, typography, and brand guidelines.",
			Terms:        "50% deposit required upon acceptance, balance due upon completion.",
			DiscountType: calc.DiscountFixed, DiscountValue: decimal.Zero,
			Totals:    seedTotals("3500", "0", "350", "3850"),
			CreatedAt: seedDay("2026-01-06"), UpdatedAt: seedDay("2026-01-06"),
		},
	}
}

// SeedDemo inserts DemoDocuments into an empty repository. It reports how
// many documents were inserted; a repository holding any document is left
// alone.
func SeedDemo(ctx context.Context, repo Repository) (int, error) {
	inserted := 0
	err := repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		for _, docType := range []DocumentType{TypeInvoice, TypeQuotation} {
			count, err := tx.Count(ctx, docType)
			if err != nil {
				return err
			}
			if count > 0 {
				return nil
			}
		}
		for _, doc := range DemoDocuments() {
			if err := tx.Insert(ctx, doc); err != nil {
				return fmt.Errorf("seed %s: %w", doc.Number, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
