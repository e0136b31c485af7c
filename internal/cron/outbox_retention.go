package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/hangout-backend/pkg/logger"
)

const (
	defaultOutboxRetention = 30 * 24 * time.Hour
	defaultDLQRetention    = 90 * 24 * time.Hour
	defaultDeleteBatch     = 500
	maxBatchesPerRun       = 200
)

type publishedPruner interface {
	DeletePublishedBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

type deadLetterPruner interface {
	DeleteFailedBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

type OutboxRetentionParams struct {
	Logger       *logger.Logger
	Outbox       publishedPruner
	DLQ          deadLetterPruner
	Retention    time.Duration
	DLQRetention time.Duration
	BatchSize    int
	Now          func() time.Time
}

// outboxRetention prunes published outbox rows and old dead letters in batches.
type outboxRetention struct {
	logg         *logger.Logger
	outbox       publishedPruner
	dlq          deadLetterPruner
	retention    time.Duration
	dlqRetention time.Duration
	batch        int
	now          func() time.Time
}

func NewOutboxRetention(params OutboxRetentionParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	job := &outboxRetention{
		logg:         params.Logger,
		outbox:       params.Outbox,
		dlq:          params.DLQ,
		retention:    params.Retention,
		dlqRetention: params.DLQRetention,
		batch:        params.BatchSize,
		now:          params.Now,
	}
	if job.retention <= 0 {
		job.retention = defaultOutboxRetention
	}
	if job.dlqRetention <= 0 {
		job.dlqRetention = defaultDLQRetention
	}
	if job.batch <= 0 {
		job.batch = defaultDeleteBatch
	}
	if job.now == nil {
		job.now = time.Now
	}
	return job, nil
}

func (j *outboxRetention) Name() string { return "outbox-retention" }

func (j *outboxRetention) Run(ctx context.Context) error {
	now := j.now().UTC()

	published, err := drain(ctx, j.batch, func(limit int) (int64, error) {
		return j.outbox.DeletePublishedBefore(ctx, now.Add(-j.retention), limit)
	})
	if err != nil {
		return fmt.Errorf("prune published events: %w", err)
	}

	var deadLetters int64
	if j.dlq != nil {
		deadLetters, err = drain(ctx, j.batch, func(limit int) (int64, error) {
			return j.dlq.DeleteFailedBefore(ctx, now.Add(-j.dlqRetention), limit)
		})
		if err != nil {
			return fmt.Errorf("prune dead letters: %w", err)
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"published_deleted":   published,
		"dead_letter_deleted": deadLetters,
		"retention_hours":     int(j.retention.Hours()),
	}), "outbox retention complete")
	return nil
}

// drain repeats del until a batch comes back short.
func drain(ctx context.Context, batch int, del func(limit int) (int64, error)) (int64, error) {
	var total int64
	for i := 0; i < maxBatchesPerRun; i++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := del(batch)
		if err != nil {
			return total, err
		}
		total += n
		if n < int64(batch) {
			break
		}
	}
	return total, nil
}
