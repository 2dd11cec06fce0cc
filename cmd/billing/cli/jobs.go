// Package cli holds operator commands bundled into the billing binary.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/billing/internal/platform/cache"
	"github.com/odyssey-erp/billing/jobs"
)

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) (*JobsCLI, error) {
	redisOpts, err := cache.Options(redisAddr)
	if err != nil {
		return nil, err
	}
	opts := jobs.RedisOpt(redisOpts)
	client, err := jobs.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &JobsCLI{client: client, inspector: asynq.NewInspector(opts)}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var errs []error
	if c.inspector != nil {
		errs = append(errs, c.inspector.Close())
	}
	if c.client != nil {
		errs = append(errs, c.client.Close())
	}
	return errors.Join(errs...)
}

// Trigger enqueues a supported job by task name.
func (c *JobsCLI) Trigger(ctx context.Context, name string, asOf time.Time) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	switch name {
	case jobs.TaskOverdueSweep, "overdue-sweep":
		return c.client.EnqueueOverdueSweep(ctx, asOf)
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
}

// InspectQueue reports the metrics for the default queue.
func (c *JobsCLI) InspectQueue(ctx context.Context) (jobs.QueueStats, error) {
	if c == nil || c.inspector == nil {
		return jobs.QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	return jobs.InspectQueue(c.inspector)
}

type jobsAPI interface {
	Trigger(ctx context.Context, name string, asOf time.Time) (*asynq.TaskInfo, error)
	InspectQueue(ctx context.Context) (jobs.QueueStats, error)
}

// RunJobs executes `billing jobs <trigger|stats>` and returns the exit code.
func RunJobs(ctx context.Context, redisAddr string, args []string, stdout, stderr io.Writer) int {
	c, err := NewJobsCLI(redisAddr)
	if err != nil {
		fmt.Fprintf(stderr, "jobs: %v\n", err)
		return 1
	}
	defer c.Close()
	return runJobs(ctx, c, args, stdout, stderr)
}

func runJobs(ctx context.Context, api jobsAPI, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: billing jobs <trigger|stats> [flags]")
		return 2
	}

	switch args[0] {
	case "trigger":
		fs := flag.NewFlagSet("jobs trigger", flag.ContinueOnError)
		fs.SetOutput(stderr)
		name := fs.String("job", jobs.TaskOverdueSweep, "task to enqueue")
		asOfRaw := fs.String("as-of", "", "reference time (RFC3339), defaults to run time")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		var asOf time.Time
		if *asOfRaw != "" {
			parsed, err := time.Parse(time.RFC3339, *asOfRaw)
			if err != nil {
				fmt.Fprintf(stderr, "jobs trigger: invalid -as-of: %v\n", err)
				return 2
			}
			asOf = parsed
		}
		info, err := api.Trigger(ctx, *name, asOf)
		if err != nil {
			fmt.Fprintf(stderr, "jobs trigger: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
		return 0
	case "stats":
		fs := flag.NewFlagSet("jobs stats", flag.ContinueOnError)
		fs.SetOutput(stderr)
		asJSON := fs.Bool("json", false, "print JSON")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		stats, err := api.InspectQueue(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "jobs stats: %v\n", err)
			return 1
		}
		if *asJSON {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(stats); err != nil {
				return 1
			}
			return 0
		}
		fmt.Fprintf(stdout, "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
		return 0
	default:
		fmt.Fprintf(stderr, "jobs: unknown command %q\n", args[0])
		return 2
	}
}
