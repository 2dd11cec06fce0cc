package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/billing/internal/billing"
	jobmetrics "github.com/odyssey-erp/billing/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// OverdueSweeper is the part of the billing service the sweep needs.
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, asOf time.Time) ([]billing.Document, error)
}

// OverdueSweepJob marks sent invoices whose due date has passed as Overdue.
type OverdueSweepJob struct {
	Sweeper OverdueSweeper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewOverdueSweepJob initialises the overdue sweep handler.
func NewOverdueSweepJob(sweeper OverdueSweeper, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueSweepJob {
	return &OverdueSweepJob{
		Sweeper: sweeper,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the sweep for an Asynq task.
func (j *OverdueSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sweeper == nil {
		return errors.New("overdue sweep: handler not configured")
	}
	var payload OverdueSweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	_, err := j.Run(ctx, payload.AsOf)
	return err
}

// Run sweeps invoices due before asOf, defaulting to the job clock.
func (j *OverdueSweepJob) Run(ctx context.Context, asOf time.Time) (swept int, resultErr error) {
	start := j.now()
	if asOf.IsZero() {
		asOf = start
	}

	tracker := j.metrics().Track(TaskOverdueSweep)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Time("as_of", asOf))
	logger.Info("starting overdue sweep")

	docs, err := j.Sweeper.SweepOverdue(ctx, asOf)
	// Invoices updated before a failure stay Overdue, so count them either way.
	j.metrics().AddDocuments(TaskOverdueSweep, len(docs))
	if err != nil {
		logger.Error("overdue sweep failed", slog.Int("swept", len(docs)), slog.Any("error", err))
		return len(docs), err
	}
	for _, doc := range docs {
		logger.Info("invoice overdue",
			slog.String("invoice_id", doc.ID),
			slog.String("number", doc.Number),
			slog.String("client", doc.ClientName),
		)
	}

	logger.Info("completed overdue sweep",
		slog.Int("swept", len(docs)),
		slog.Duration("duration", time.Since(start)),
	)
	return len(docs), nil
}

func (j *OverdueSweepJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *OverdueSweepJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *OverdueSweepJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
