package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"tutorplan/libs/config"
	"tutorplan/libs/db"
	"tutorplan/libs/httpx"
	"tutorplan/libs/kafkax"
	otelx "tutorplan/libs/otel"
	"tutorplan/libs/runtime"
	"tutorplan/services/schedule-service/internal/cache"
	"tutorplan/services/schedule-service/internal/handlers"
	"tutorplan/services/schedule-service/internal/outbox"
	"tutorplan/services/schedule-service/internal/settings"
	"tutorplan/services/schedule-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "schedule-service")
	port, err := config.Port("PORT", "8084")
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

	var rdb *redis.Client
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
	} else {
		logger.Warn("redis disabled (REDIS_ADDR not set); caching and rate limiting off")
	}

	scheduleRepo := storage.NewScheduleRepository(pool)
	settingsRepo := storage.NewSettingsRepository(pool)
	paymentsRepo := storage.NewPaymentsRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	settingsProvider, err := settings.NewProvider(logger, settingsRepo, config.String("SETTINGS_GRPC_ADDR", ""))
	if err != nil {
		logger.Error("settings provider init failed", "err", err)
		settingsProvider = settings.NewStoreProvider(settingsRepo)
	}

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	recommendCache := cache.NewRecommendCache(rdb, logger,
		time.Duration(config.Int("RECOMMEND_CACHE_TTL_SECONDS", 30))*time.Second)
	reminderOffset := time.Duration(config.Int("REMINDER_OFFSET_MINUTES", 1440)) * time.Minute

	recommendHandler := handlers.NewRecommendHandler(scheduleRepo, settingsProvider, recommendCache, logger)
	sessionsHandler := handlers.NewSessionsHandler(scheduleRepo, outboxRepo, logger, reminderOffset)
	paymentsHandler := handlers.NewPaymentsHandler(paymentsRepo, logger,
		config.String("STRIPE_WEBHOOK_SECRET", ""),
		time.Duration(config.Int("STRIPE_WEBHOOK_TOLERANCE_SECONDS", 300))*time.Second)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)

	recommendRoute := http.Handler(http.HandlerFunc(recommendHandler.Recommend))
	if rdb != nil {
		limiter := httpx.NewRedisRateLimiter(rdb,
			config.Int("RATE_LIMIT_PER_MINUTE", 120), time.Minute, "rl:recommend")
		recommendRoute = limiter.Middleware(logger, true)(recommendRoute)
	}
	mux.Handle("/api/v1/slots/recommend", recommendRoute)
	mux.HandleFunc("/api/v1/sessions", sessionsHandler.Create)
	mux.HandleFunc("/api/v1/sessions/cancel", sessionsHandler.Cancel)
	mux.HandleFunc("/api/v1/sessions/attendance", sessionsHandler.Attendance)
	mux.HandleFunc("/api/v1/payments/stripe/webhook", paymentsHandler.StripeWebhook)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "schedule")
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
