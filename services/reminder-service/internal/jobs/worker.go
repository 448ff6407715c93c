package jobs

import (
	"context"
	"log/slog"
	"time"

	"tutorplan/libs/db"
	otelx "tutorplan/libs/otel"
	"tutorplan/services/reminder-service/internal/whatsapp"
)

type Worker struct {
	pool      *db.Pool
	repo      *Repository
	sender    whatsapp.Sender
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	backoff   time.Duration
}

type WorkerConfig struct {
	Interval  time.Duration
	BatchSize int
	Backoff   time.Duration
}

func NewWorker(pool *db.Pool, repo *Repository, sender whatsapp.Sender, logger *slog.Logger, cfg WorkerConfig) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 1 * time.Minute
	}
	return &Worker{
		pool:      pool,
		repo:      repo,
		sender:    sender,
		logger:    logger,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		backoff:   cfg.Backoff,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				w.logger.Error("reminder batch failed", "err", err)
			}
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	due, err := w.repo.FetchDue(ctx, tx, w.batchSize)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return tx.Commit(ctx)
	}

	var sent []int64
	for _, job := range due {
		jobCtx := otelx.ContextWithTraceContext(ctx, job.Traceparent, job.Tracestate)
		if err := w.sender.Send(jobCtx, job.Recipient, job.Body); err != nil {
			w.logger.Warn("reminder send failed",
				"err", err,
				"session_id", job.SessionID,
				"provider", w.sender.ProviderID(),
				"attempt", job.Attempts+1,
			)
			nextRunAt := time.Now().UTC().Add(w.backoff)
			if err := w.repo.MarkFailed(ctx, tx, job.ID, job.Attempts+1, job.MaxAttempts, nextRunAt, err.Error()); err != nil {
				return err
			}
			continue
		}
		w.logger.Info("reminder sent",
			"session_id", job.SessionID,
			"provider", w.sender.ProviderID(),
			"remind_at", job.RemindAt.UTC().Format(time.RFC3339),
		)
		sent = append(sent, job.ID)
	}

	if err := w.repo.MarkSent(ctx, tx, sent); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
