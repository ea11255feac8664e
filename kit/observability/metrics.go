package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics owns every counter the core emits. Nothing registers against the
// Prometheus default registry: the registry is injected at construction so
// tests and embedders control metric visibility.
type Metrics struct {
	PaymentsCreated  prometheus.Counter
	PaymentsCaptured prometheus.Counter
	PaymentsRefunded prometheus.Counter
	PaymentsVoided   prometheus.Counter
	PaymentsFailed   prometheus.Counter

	WebhooksReceived  prometheus.Counter
	WebhooksDuplicate prometheus.Counter
	WebhooksBadSig    prometheus.Counter
	WebhooksReplayed  prometheus.Counter

	IdempotencyHits prometheus.Counter
	RetryAttempts   prometheus.Counter
	BreakerOpens    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PaymentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paygate_payments_created_total",
			Help: "Payments accepted for processing",
		}),
		PaymentsCaptured: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paygate_payments_captured_total",
			Help: "Payments captured through the processor",
		}),
		PaymentsRefunded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paygate_payments_refunded_total",
			Help: "Refund operations applied (full or partial)",
		}),
		PaymentsVoided: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paygate_payments_voided_total",
			Help: "Payments cancelled before capture",
		}),
		PaymentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paygate_payments_failed_total",
			Help: "Payments rejected by the processor",
		}),
		WebhooksReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paygate_webhooks_received_total",
			Help: "Webhook deliveries accepted after signature verification",
		}),
		WebhooksDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paygate_webhooks_duplicate_total",
			Help: "Webhook deliveries skipped as duplicates",
		}),
		WebhooksBadSig: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paygate_webhooks_bad_signature_total",
			Help: "Webhook deliveries rejected for a bad signature",
		}),
		WebhooksReplayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paygate_webhooks_replayed_total",
			Help: "Explicit webhook replays",
		}),
		IdempotencyHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paygate_idempotency_hits_total",
			Help: "Mutating requests answered from the idempotency cache",
		}),
		RetryAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paygate_retry_attempts_total",
			Help: "Individual attempts against the processor, retries included",
		}),
		BreakerOpens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paygate_breaker_opens_total",
			Help: "Circuit breaker transitions to open, per dependency",
		}, []string{"dependency"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.PaymentsCreated, m.PaymentsCaptured, m.PaymentsRefunded,
			m.PaymentsVoided, m.PaymentsFailed,
			m.WebhooksReceived, m.WebhooksDuplicate, m.WebhooksBadSig, m.WebhooksReplayed,
			m.IdempotencyHits, m.RetryAttempts, m.BreakerOpens,
		)
	}
	return m
}
