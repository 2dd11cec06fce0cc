package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/billing/internal/billing"
	"github.com/odyssey-erp/billing/internal/billing/store/memory"
	"github.com/odyssey-erp/billing/internal/billing/store/postgres"
	"github.com/odyssey-erp/billing/internal/billing/store/sqlite"
	"github.com/odyssey-erp/billing/internal/directory"
	"github.com/odyssey-erp/billing/internal/observability"
	"github.com/odyssey-erp/billing/internal/platform/cache"
	"github.com/odyssey-erp/billing/internal/platform/db"
)

// ErrRedisRequired is returned when a feature that needs Redis is enabled
// without a Redis client.
var ErrRedisRequired = errors.New("redis client required")

// Deps are the shared runtime dependencies used to assemble the billing stack.
type Deps struct {
	Config  *Config
	Logger  *slog.Logger
	Redis   *redis.Client
	Metrics *observability.Metrics
}

// Billing holds the assembled billing components.
type Billing struct {
	Repository billing.Repository
	Service    *billing.Service
	Summaries  *billing.SummaryService
	Events     *billing.Broadcaster
	Clients    *directory.Clients
	Products   *directory.Products

	closers []func() error
}

// Bootstrap opens the configured store and wires the service, numbering,
// notifiers and summary cache around it.
func Bootstrap(ctx context.Context, deps Deps) (*Billing, error) {
	cfg := deps.Config
	if cfg == nil {
		return nil, errors.New("bootstrap: config required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repo, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	b := &Billing{Repository: repo, closers: []func() error{closeStore}}

	var sequencer billing.Sequencer = billing.CountSequencer{}
	if cfg.NumberingMode == NumberingRedis {
		if deps.Redis == nil {
			_ = b.Close()
			return nil, fmt.Errorf("bootstrap: NUMBERING_MODE=redis: %w", ErrRedisRequired)
		}
		sequencer = billing.NewRedisSequencer(deps.Redis)
	}

	b.Clients = directory.NewClients(directory.DemoClients())
	b.Products = directory.NewProducts(directory.DemoProducts())
	b.Summaries = billing.NewSummaryService(repo, cache.NewVersioned(deps.Redis, "billing:summary", cfg.SummaryCacheTTL))
	b.Events = billing.NewBroadcaster()

	notifiers := billing.MultiNotifier{
		b.Events,
		b.Summaries.Invalidator(logger),
	}
	if deps.Redis != nil {
		notifiers = append(notifiers, billing.NewRedisNotifier(deps.Redis, billing.DefaultEventChannel, logger))
	}
	if deps.Metrics != nil {
		notifiers = append(notifiers, billing.NotifierFunc(func(_ context.Context, event billing.Event) {
			deps.Metrics.ObserveDocumentEvent(string(event.Kind), string(event.DocumentType))
		}))
	}

	b.Service = billing.NewService(repo, billing.ServiceConfig{
		Sequencer: sequencer,
		Notifier:  notifiers,
		Clients:   b.Clients,
		Products:  b.Products,
		Logger:    logger,
	})

	if cfg.SeedDemo {
		inserted, err := billing.SeedDemo(ctx, repo)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("bootstrap: seed demo documents: %w", err)
		}
		if inserted > 0 {
			logger.Info("seeded demo documents", slog.Int("count", inserted))
		}
	}

	logger.Info("billing ready",
		slog.String("store", cfg.StoreDriver),
		slog.String("numbering", cfg.NumberingMode),
		slog.Bool("redis", deps.Redis != nil),
	)
	return b, nil
}

// Close releases the store.
func (b *Billing) Close() error {
	if b == nil {
		return nil
	}
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// OpenStore returns the repository selected by STORE_DRIVER and a function
// releasing it.
func OpenStore(ctx context.Context, cfg *Config) (billing.Repository, func() error, error) {
	switch cfg.StoreDriver {
	case StoreMemory, "":
		return memory.New(), func() error { return nil }, nil
	case StoreSQLite:
		store, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, store.Close, nil
	case StorePostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		repo := postgres.NewRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres store: %w", err)
		}
		return repo, func() error { pool.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
