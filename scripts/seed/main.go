package main

import (
	"context"
	"fmt"
	"log"

	"github.com/odyssey-erp/billing/internal/app"
	"github.com/odyssey-erp/billing/internal/billing"
)

// Seeds the configured persistent store with the demo invoices and
// quotations. Existing documents are left untouched.
func main() {
	ctx := context.Background()
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver == app.StoreMemory {
		log.Fatalf("STORE_DRIVER=memory has nothing to seed; use sqlite or postgres")
	}

	repo, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	fmt.Printf("→ Seeding demo documents into %s...\n", cfg.StoreDriver)
	inserted, err := billing.SeedDemo(ctx, repo)
	if err != nil {
		log.Fatalf("seed documents: %v", err)
	}

	for _, docType := range []billing.DocumentType{billing.TypeInvoice, billing.TypeQuotation} {
		count, err := repo.Count(ctx, docType)
		if err != nil {
			log.Fatalf("count %s: %v", docType, err)
		}
		fmt.Printf("  %s: %d\n", docType, count)
	}
	fmt.Printf("✓ Seed complete (%d inserted)\n", inserted)
}
