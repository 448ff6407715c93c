package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"tutorplan/libs/config"
	"tutorplan/libs/db"
	"tutorplan/libs/httpx"
	"tutorplan/libs/kafkax"
	otelx "tutorplan/libs/otel"
	"tutorplan/libs/runtime"
	"tutorplan/services/reminder-service/internal/consumer"
	"tutorplan/services/reminder-service/internal/inbox"
	"tutorplan/services/reminder-service/internal/jobs"
	"tutorplan/services/reminder-service/internal/whatsapp"
)

func main() {
	service := config.String("SERVICE_NAME", "reminder-service")
	port, err := config.Port("PORT", "8085")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	var sender whatsapp.Sender
	if url := strings.TrimSpace(config.String("WHATSAPP_WEBHOOK_URL", "")); url != "" {
		sender = whatsapp.NewWebhookSender(url, config.String("WHATSAPP_WEBHOOK_TOKEN", ""))
	} else {
		logger.Warn("whatsapp sender in noop mode (WHATSAPP_WEBHOOK_URL not set)")
		sender = whatsapp.NewNoopSender()
	}

	jobsRepo := jobs.NewRepository()
	inboxRepo := inbox.NewRepository(pool)

	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "reminder-service")

	requestedConsumer := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   config.String("KAFKA_REMINDER_TOPIC", "schedule.reminder.requested.v1"),
	}, func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			SessionID string `json:"session_id"`
			TutorID   string `json:"tutor_id"`
			Recipient string `json:"recipient"`
			RemindAt  string `json:"remind_at"`
			Body      string `json:"body"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid reminder payload", "err", err)
			return nil
		}
		if payload.SessionID == "" || payload.Recipient == "" || payload.Body == "" {
			logger.Error("missing required reminder fields", "session_id", payload.SessionID)
			return nil
		}
		remindAt, err := time.Parse(time.RFC3339, payload.RemindAt)
		if err != nil {
			logger.Error("invalid remind_at", "err", err, "session_id", payload.SessionID)
			return nil
		}

		meta := kafkax.ExtractEventMeta(msg)
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := jobsRepo.Insert(ctx, tx, jobs.Job{
			IdempotencyKey: meta.EventID,
			SessionID:      payload.SessionID,
			TutorID:        payload.TutorID,
			Recipient:      payload.Recipient,
			Body:           payload.Body,
			RemindAt:       remindAt,
		}); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	go requestedConsumer.Run(ctx)

	cancelledConsumer := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   config.String("KAFKA_CANCELLED_TOPIC", "schedule.session.cancelled.v1"),
	}, func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			SessionID string `json:"session_id"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid cancellation payload", "err", err)
			return nil
		}
		if payload.SessionID == "" {
			return nil
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := jobsRepo.CancelBySession(ctx, tx, payload.SessionID); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	go cancelledConsumer.Run(ctx)

	worker := jobs.NewWorker(pool, jobsRepo, sender, logger, jobs.WorkerConfig{
		Interval:  time.Duration(config.Int("WORKER_INTERVAL_SECONDS", 2)) * time.Second,
		BatchSize: config.Int("WORKER_BATCH_SIZE", 50),
		Backoff:   time.Duration(config.Int("WORKER_BACKOFF_SECONDS", 60)) * time.Second,
	})
	go worker.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
