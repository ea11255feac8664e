package main

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paygate/cmd/web/config"
	"paygate/cmd/web/handlers"
	"paygate/cmd/web/validator"
	"paygate/internal/audit"
	"paygate/internal/events"
	"paygate/internal/health"
	"paygate/internal/notification"
	"paygate/internal/payment"
	"paygate/internal/webhook"
	"paygate/kit/breaker"
	"paygate/kit/broker"
	"paygate/kit/db"
	"paygate/kit/idempotency"
	"paygate/kit/observability"
	"paygate/kit/processor"
	"paygate/kit/retry"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()
	registry := prometheus.NewRegistry()
	metricsKit := observability.NewMetrics(registry)
	bus := broker.New()
	defer bus.Close()

	store, err := db.NewWithFile(filepath.Join(cfg.DataDir, "events.jsonl"))
	if err != nil {
		logger.Error("event store init error", "error", err.Error())
		return
	}
	defer func() { _ = store.Close() }()

	auditSvc, err := audit.NewServiceWithFile(logger, filepath.Join(cfg.DataDir, "audit.jsonl"))
	if err != nil {
		logger.Error("audit init error", "error", err.Error())
		return
	}
	defer func() { _ = auditSvc.Close() }()

	notificationSvc := notification.NewService(logger)

	mockDB, err := db.NewMockClient(
		db.WithPaymentsJSONFile(filepath.Join(cfg.DataDir, "payments.json")),
		db.WithPaymentsJSONPersistence(filepath.Join(cfg.DataDir, "payments.json")),
	)
	if err != nil {
		logger.Error("db init error", "error", err.Error())
		return
	}

	var idemStore idempotency.Store
	if cfg.RedisAddr != "" {
		redisStore := idempotency.NewRedisStore(cfg.RedisAddr, "", 0)
		if err := redisStore.Ping(context.Background()); err != nil {
			logger.Error("redis ping error", "addr", cfg.RedisAddr, "error", err.Error())
			return
		}
		idemStore = redisStore
	} else {
		idemStore = idempotency.NewMemoryStore()
	}

	procClient := processor.NewFakeClient()
	procBreaker := breaker.New("processor", breaker.Config{
		FailureThreshold: cfg.FailureThreshold,
		RecoveryTimeout:  cfg.RecoveryTimeout,
		IsFailure:        processor.IsTransient,
		OnOpen: func(name string) {
			metricsKit.BreakerOpens.WithLabelValues(name).Inc()
		},
	})

	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.MaxRetries

	paymentRepo := payment.NewSQLRepository(mockDB)
	paymentSvc := payment.NewService(payment.Config{
		Repository:  paymentRepo,
		Processor:   procClient,
		Breaker:     procBreaker,
		Idempotency: idemStore,
		RetryPolicy: policy,
		CallTimeout: cfg.CallTimeout,
		ResultTTL:   cfg.ResultTTL,
		Bus:         bus,
		Store:       store,
		Metrics:     metricsKit,
	})

	webhookRepo := webhook.NewSQLRepository(mockDB)
	webhookSvc := webhook.NewService(webhookRepo, paymentSvc, bus, metricsKit, []byte(cfg.WebhookSecret))

	healthSvc := health.NewService(2*time.Second, map[string]health.CheckFunc{
		"db": func(ctx context.Context) error {
			if _, err := paymentRepo.Get(ctx, "__healthcheck__"); err != nil && !db.IsNotFound(err) {
				return err
			}
			return nil
		},
		"idempotency": func(ctx context.Context) error {
			_, err := idemStore.Get(ctx, "__healthcheck__")
			return err
		},
	})

	for _, name := range []string{
		events.PaymentCreated{}.Name(),
		events.PaymentCaptured{}.Name(),
		events.PaymentSettled{}.Name(),
		events.PaymentFailed{}.Name(),
		events.PaymentRefunded{}.Name(),
		events.PaymentVoided{}.Name(),
		events.WebhookReceived{}.Name(),
		events.WebhookDuplicate{}.Name(),
		events.WebhookRejected{}.Name(),
		events.WebhookReplayed{}.Name(),
	} {
		bus.Subscribe(name, auditSvc.HandleEvent)
	}
	bus.Subscribe(events.PaymentCaptured{}.Name(), notificationSvc.HandleEvent)
	bus.Subscribe(events.PaymentRefunded{}.Name(), notificationSvc.HandleEvent)
	bus.Subscribe(events.PaymentVoided{}.Name(), notificationSvc.HandleEvent)
	bus.Subscribe(events.PaymentFailed{}.Name(), notificationSvc.HandleEvent)

	jsonV := validator.NewJSON()
	paymentH := handlers.NewPayment(jsonV, paymentSvc)
	webhookH := handlers.NewWebhook(webhookSvc)
	healthH := handlers.NewHealth(healthSvc)

	go func() {
		t := time.NewTicker(30 * time.Second)
		defer t.Stop()
		for range t.C {
			m := paymentSvc.BreakerMetrics()
			logger.Info(
				"breaker snapshot",
				"dependency", procBreaker.Name(),
				"state", m.State,
				"total", m.Total,
				"failure", m.Failure,
				"opens", m.Opens,
			)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /payments", paymentH.Create)
	mux.HandleFunc("GET /payments/{id}", paymentH.Get)
	mux.HandleFunc("POST /payments/{id}/refund", paymentH.Refund)
	mux.HandleFunc("POST /payments/{id}/cancel", paymentH.Cancel)
	mux.HandleFunc("POST /webhooks/processor", webhookH.Receive)
	mux.HandleFunc("POST /webhooks/{id}/replay", webhookH.Replay)
	mux.HandleFunc("GET /health", healthH.Handler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 2 * time.Second}

	logger.Info("web server started", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("web server error", "error", err.Error())
	}
}
