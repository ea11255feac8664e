package payment

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"paygate/kit/breaker"
	"paygate/kit/broker"
	"paygate/kit/idempotency"
	"paygate/kit/observability"
	"paygate/kit/processor"
	"paygate/kit/retry"
)

type CreateRequest struct {
	PaymentID      string
	Amount         int64
	Currency       string
	MethodToken    string
	IdempotencyKey string
}

func ValidateCreateRequest(r CreateRequest) error {
	if r.Amount <= 0 {
		return NewValidationError("amount must be positive, got %d", r.Amount)
	}
	if len(r.Currency) != 3 {
		return NewValidationError("currency must be a 3-letter code, got %q", r.Currency)
	}
	if r.MethodToken == "" {
		return NewValidationError("method token is required")
	}
	return nil
}

type RefundRequest struct {
	PaymentID      string
	Amount         int64
	IdempotencyKey string
}

type CancelRequest struct {
	PaymentID      string
	IdempotencyKey string
}

// OperationResult is the outcome of a mutating operation. Replayed marks a
// response served from the idempotency cache without re-execution.
type OperationResult struct {
	Payment  Payment
	Replayed bool
}

type Config struct {
	Repository  RepositoryContract
	Processor   processor.Client
	Breaker     *breaker.Breaker
	Idempotency idempotency.Store
	RetryPolicy retry.Policy
	CallTimeout time.Duration
	ResultTTL   time.Duration
	Bus         PublisherContract
	Store       StoreContract
	Metrics     *observability.Metrics
}

// Service orchestrates mutating payment operations: idempotency check,
// lifecycle validation, breaker-gated retried processor call, persist,
// cache. It owns the per-fingerprint and per-payment locks that make the
// get→compute→put and read-modify-write windows safe under concurrent
// identical requests.
type Service struct {
	repo        RepositoryContract
	proc        processor.Client
	brk         *breaker.Breaker
	idem        idempotency.Store
	keys        *idempotency.KeyLock
	payments    *idempotency.KeyLock
	policy      retry.Policy
	callTimeout time.Duration
	resultTTL   time.Duration
	bus         PublisherContract
	store       StoreContract
	metrics     *observability.Metrics
	newID       func() string
}

func NewService(cfg Config) *Service {
	if cfg.Idempotency == nil {
		cfg.Idempotency = idempotency.NewMemoryStore()
	}
	if cfg.RetryPolicy == (retry.Policy{}) {
		cfg.RetryPolicy = retry.DefaultPolicy()
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = idempotency.DefaultTTL
	}
	return &Service{
		repo:        cfg.Repository,
		proc:        cfg.Processor,
		brk:         cfg.Breaker,
		idem:        cfg.Idempotency,
		keys:        idempotency.NewKeyLock(),
		payments:    idempotency.NewKeyLock(),
		policy:      cfg.RetryPolicy,
		callTimeout: cfg.CallTimeout,
		resultTTL:   cfg.ResultTTL,
		bus:         cfg.Bus,
		store:       cfg.Store,
		metrics:     cfg.Metrics,
		newID:       uuid.NewString,
	}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (OperationResult, error) {
	if err := ValidateCreateRequest(req); err != nil {
		log.Printf("layer=service component=payment method=Create payment_id=%s err=%v", req.PaymentID, err)
		return OperationResult{}, err
	}
	if req.PaymentID == "" {
		req.PaymentID = s.newID()
	}

	key := s.fingerprintFor("payment.create", req.IdempotencyKey, map[string]string{
		"payment_id":   req.PaymentID,
		"amount":       strconv.FormatInt(req.Amount, 10),
		"currency":     req.Currency,
		"method_token": req.MethodToken,
	})
	s.keys.Lock(key)
	defer s.keys.Unlock(key)

	if res, ok := s.replay(ctx, key); ok {
		return res, nil
	}

	p := Payment{ID: req.PaymentID, Amount: req.Amount, Currency: req.Currency, Status: StatusPending}
	if err := s.repo.Save(ctx, &p); err != nil {
		log.Printf("layer=service component=payment method=Create payment_id=%s err=%v", p.ID, err)
		return OperationResult{}, err
	}
	s.record(ctx, p.ID, ToPaymentCreatedEvent(p))
	if s.metrics != nil {
		s.metrics.PaymentsCreated.Inc()
	}

	result, err := s.callProcessor(ctx, func(ctx context.Context) (processor.Result, error) {
		return s.proc.Charge(ctx, req.Amount, req.Currency, req.MethodToken)
	})
	if err != nil {
		if processor.IsPermanent(err) {
			failed := ApplyFailure(p, err.Error())
			if saveErr := s.repo.Save(ctx, &failed); saveErr != nil {
				log.Printf("layer=service component=payment method=Create payment_id=%s err=%v", p.ID, saveErr)
			}
			s.record(ctx, p.ID, ToPaymentFailedEvent(failed, result.ResponseCode))
			if s.metrics != nil {
				s.metrics.PaymentsFailed.Inc()
			}
		}
		// transient exhaustion, open circuit or deadline: the payment stays
		// pending and the idempotency key stays unset, so a retry with the
		// same key is attempted fresh
		log.Printf("layer=service component=payment method=Create payment_id=%s err=%v", p.ID, err)
		return OperationResult{}, err
	}

	captured := ApplyCapture(p, result.TransactionID)
	if err := s.repo.Save(ctx, &captured); err != nil {
		log.Printf("layer=service component=payment method=Create payment_id=%s err=%v", p.ID, err)
		return OperationResult{}, err
	}
	s.record(ctx, captured.ID, ToPaymentCapturedEvent(captured))
	if s.metrics != nil {
		s.metrics.PaymentsCaptured.Inc()
	}
	s.cache(ctx, key, captured)
	return OperationResult{Payment: captured}, nil
}

func (s *Service) Refund(ctx context.Context, req RefundRequest) (OperationResult, error) {
	key := s.fingerprintFor("payment.refund", req.IdempotencyKey, map[string]string{
		"payment_id": req.PaymentID,
		"amount":     strconv.FormatInt(req.Amount, 10),
	})
	s.keys.Lock(key)
	defer s.keys.Unlock(key)

	if res, ok := s.replay(ctx, key); ok {
		return res, nil
	}

	s.payments.Lock(req.PaymentID)
	defer s.payments.Unlock(req.PaymentID)

	p, err := s.repo.Get(ctx, req.PaymentID)
	if err != nil {
		log.Printf("layer=service component=payment method=Refund payment_id=%s err=%v", req.PaymentID, err)
		return OperationResult{}, err
	}
	if err := ValidateRefund(*p, req.Amount); err != nil {
		log.Printf("layer=service component=payment method=Refund payment_id=%s err=%v", req.PaymentID, err)
		return OperationResult{}, err
	}

	if _, err := s.callProcessor(ctx, func(ctx context.Context) (processor.Result, error) {
		return s.proc.Refund(ctx, p.ProcessorTxnID, req.Amount)
	}); err != nil {
		log.Printf("layer=service component=payment method=Refund payment_id=%s err=%v", req.PaymentID, err)
		return OperationResult{}, err
	}

	updated := ApplyRefund(*p, req.Amount)
	if err := s.repo.Save(ctx, &updated); err != nil {
		log.Printf("layer=service component=payment method=Refund payment_id=%s err=%v", req.PaymentID, err)
		return OperationResult{}, err
	}
	s.record(ctx, updated.ID, ToPaymentRefundedEvent(updated, req.Amount))
	if s.metrics != nil {
		s.metrics.PaymentsRefunded.Inc()
	}
	s.cache(ctx, key, updated)
	return OperationResult{Payment: updated}, nil
}

func (s *Service) Cancel(ctx context.Context, req CancelRequest) (OperationResult, error) {
	key := s.fingerprintFor("payment.cancel", req.IdempotencyKey, map[string]string{
		"payment_id": req.PaymentID,
	})
	s.keys.Lock(key)
	defer s.keys.Unlock(key)

	if res, ok := s.replay(ctx, key); ok {
		return res, nil
	}

	s.payments.Lock(req.PaymentID)
	defer s.payments.Unlock(req.PaymentID)

	p, err := s.repo.Get(ctx, req.PaymentID)
	if err != nil {
		log.Printf("layer=service component=payment method=Cancel payment_id=%s err=%v", req.PaymentID, err)
		return OperationResult{}, err
	}
	if err := ValidateCancel(*p); err != nil {
		log.Printf("layer=service component=payment method=Cancel payment_id=%s err=%v", req.PaymentID, err)
		return OperationResult{}, err
	}

	// cancellable payments were never charged; the processor void only runs
	// when a transaction exists
	if p.ProcessorTxnID != "" {
		if _, err := s.callProcessor(ctx, func(ctx context.Context) (processor.Result, error) {
			return s.proc.Void(ctx, p.ProcessorTxnID)
		}); err != nil {
			log.Printf("layer=service component=payment method=Cancel payment_id=%s err=%v", req.PaymentID, err)
			return OperationResult{}, err
		}
	}

	updated := ApplyCancel(*p)
	if err := s.repo.Save(ctx, &updated); err != nil {
		log.Printf("layer=service component=payment method=Cancel payment_id=%s err=%v", req.PaymentID, err)
		return OperationResult{}, err
	}
	s.record(ctx, updated.ID, ToPaymentVoidedEvent(updated))
	if s.metrics != nil {
		s.metrics.PaymentsVoided.Inc()
	}
	s.cache(ctx, key, updated)
	return OperationResult{Payment: updated}, nil
}

func (s *Service) Get(ctx context.Context, paymentID string) (*Payment, error) {
	p, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		log.Printf("layer=service component=payment method=Get payment_id=%s err=%v", paymentID, err)
		return nil, err
	}
	return p, nil
}

// ApplyWebhookRefund applies a refund the processor already executed on its
// side. The mutation is keyed on the event id, so a redelivered or replayed
// event returns the cached outcome instead of refunding twice.
func (s *Service) ApplyWebhookRefund(ctx context.Context, eventID, paymentID string, amount int64) (OperationResult, error) {
	key := idempotency.Fingerprint("webhook.refund", map[string]string{"event_id": eventID})
	s.keys.Lock(key)
	defer s.keys.Unlock(key)

	if res, ok := s.replay(ctx, key); ok {
		return res, nil
	}

	s.payments.Lock(paymentID)
	defer s.payments.Unlock(paymentID)

	p, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		log.Printf("layer=service component=payment method=ApplyWebhookRefund payment_id=%s event_id=%s err=%v", paymentID, eventID, err)
		return OperationResult{}, err
	}
	if err := ValidateRefund(*p, amount); err != nil {
		log.Printf("layer=service component=payment method=ApplyWebhookRefund payment_id=%s event_id=%s err=%v", paymentID, eventID, err)
		return OperationResult{}, err
	}

	updated := ApplyRefund(*p, amount)
	if err := s.repo.Save(ctx, &updated); err != nil {
		log.Printf("layer=service component=payment method=ApplyWebhookRefund payment_id=%s event_id=%s err=%v", paymentID, eventID, err)
		return OperationResult{}, err
	}
	s.record(ctx, updated.ID, ToPaymentRefundedEvent(updated, amount))
	if s.metrics != nil {
		s.metrics.PaymentsRefunded.Inc()
	}
	s.cache(ctx, key, updated)
	return OperationResult{Payment: updated}, nil
}

// ApplyWebhookCapture confirms a charge the processor completed after the
// synchronous call was abandoned (the payment stayed pending).
func (s *Service) ApplyWebhookCapture(ctx context.Context, eventID, paymentID, transactionID string) (OperationResult, error) {
	key := idempotency.Fingerprint("webhook.capture", map[string]string{"event_id": eventID})
	s.keys.Lock(key)
	defer s.keys.Unlock(key)

	if res, ok := s.replay(ctx, key); ok {
		return res, nil
	}

	s.payments.Lock(paymentID)
	defer s.payments.Unlock(paymentID)

	p, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		log.Printf("layer=service component=payment method=ApplyWebhookCapture payment_id=%s event_id=%s err=%v", paymentID, eventID, err)
		return OperationResult{}, err
	}
	if err := ValidateCapture(*p); err != nil {
		log.Printf("layer=service component=payment method=ApplyWebhookCapture payment_id=%s event_id=%s err=%v", paymentID, eventID, err)
		return OperationResult{}, err
	}

	updated := ApplyCapture(*p, transactionID)
	if err := s.repo.Save(ctx, &updated); err != nil {
		log.Printf("layer=service component=payment method=ApplyWebhookCapture payment_id=%s event_id=%s err=%v", paymentID, eventID, err)
		return OperationResult{}, err
	}
	s.record(ctx, updated.ID, ToPaymentCapturedEvent(updated))
	if s.metrics != nil {
		s.metrics.PaymentsCaptured.Inc()
	}
	s.cache(ctx, key, updated)
	return OperationResult{Payment: updated}, nil
}

func (s *Service) ApplyWebhookSettle(ctx context.Context, eventID, paymentID string) (OperationResult, error) {
	key := idempotency.Fingerprint("webhook.settle", map[string]string{"event_id": eventID})
	s.keys.Lock(key)
	defer s.keys.Unlock(key)

	if res, ok := s.replay(ctx, key); ok {
		return res, nil
	}

	s.payments.Lock(paymentID)
	defer s.payments.Unlock(paymentID)

	p, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		log.Printf("layer=service component=payment method=ApplyWebhookSettle payment_id=%s event_id=%s err=%v", paymentID, eventID, err)
		return OperationResult{}, err
	}
	if err := ValidateSettle(*p); err != nil {
		log.Printf("layer=service component=payment method=ApplyWebhookSettle payment_id=%s event_id=%s err=%v", paymentID, eventID, err)
		return OperationResult{}, err
	}

	updated := ApplySettle(*p)
	if err := s.repo.Save(ctx, &updated); err != nil {
		log.Printf("layer=service component=payment method=ApplyWebhookSettle payment_id=%s event_id=%s err=%v", paymentID, eventID, err)
		return OperationResult{}, err
	}
	s.record(ctx, updated.ID, ToPaymentSettledEvent(updated))
	s.cache(ctx, key, updated)
	return OperationResult{Payment: updated}, nil
}

func (s *Service) ApplyWebhookVoid(ctx context.Context, eventID, paymentID string) (OperationResult, error) {
	key := idempotency.Fingerprint("webhook.void", map[string]string{"event_id": eventID})
	s.keys.Lock(key)
	defer s.keys.Unlock(key)

	if res, ok := s.replay(ctx, key); ok {
		return res, nil
	}

	s.payments.Lock(paymentID)
	defer s.payments.Unlock(paymentID)

	p, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		log.Printf("layer=service component=payment method=ApplyWebhookVoid payment_id=%s event_id=%s err=%v", paymentID, eventID, err)
		return OperationResult{}, err
	}
	if err := ValidateCancel(*p); err != nil {
		log.Printf("layer=service component=payment method=ApplyWebhookVoid payment_id=%s event_id=%s err=%v", paymentID, eventID, err)
		return OperationResult{}, err
	}

	updated := ApplyCancel(*p)
	if err := s.repo.Save(ctx, &updated); err != nil {
		log.Printf("layer=service component=payment method=ApplyWebhookVoid payment_id=%s event_id=%s err=%v", paymentID, eventID, err)
		return OperationResult{}, err
	}
	s.record(ctx, updated.ID, ToPaymentVoidedEvent(updated))
	if s.metrics != nil {
		s.metrics.PaymentsVoided.Inc()
	}
	s.cache(ctx, key, updated)
	return OperationResult{Payment: updated}, nil
}

// BreakerMetrics exposes the processor breaker snapshot for health checks.
func (s *Service) BreakerMetrics() breaker.Metrics {
	if s.brk == nil {
		return breaker.Metrics{}
	}
	return s.brk.GetMetrics()
}

func (s *Service) fingerprintFor(op, callerKey string, params map[string]string) string {
	if callerKey != "" {
		return idempotency.Fingerprint(op, map[string]string{"idempotency_key": callerKey})
	}
	return idempotency.Fingerprint(op, params)
}

// callProcessor runs op through the circuit breaker inside the retry loop,
// bounded by the overall call deadline. Only transient failures retry; an
// open circuit and permanent rejections surface immediately.
func (s *Service) callProcessor(ctx context.Context, op func(ctx context.Context) (processor.Result, error)) (processor.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	retryable := func(err error) bool {
		return processor.IsTransient(err) && !breaker.IsOpen(err)
	}
	return retry.Do(callCtx, s.policy, retryable, func(ctx context.Context) (processor.Result, error) {
		if s.metrics != nil {
			s.metrics.RetryAttempts.Inc()
		}
		if s.brk == nil {
			return op(ctx)
		}
		return breaker.Do(ctx, s.brk, op)
	})
}

func (s *Service) replay(ctx context.Context, key string) (OperationResult, bool) {
	rec, err := s.idem.Get(ctx, key)
	if err != nil {
		// a degraded cache falls back to re-execution; the operations behind
		// it are safe to repeat
		log.Printf("layer=service component=payment method=replay key=%s err=%v", key, err)
		return OperationResult{}, false
	}
	if rec == nil {
		return OperationResult{}, false
	}
	var p Payment
	if err := json.Unmarshal(rec.Result, &p); err != nil {
		log.Printf("layer=service component=payment method=replay key=%s err=%v", key, err)
		return OperationResult{}, false
	}
	if s.metrics != nil {
		s.metrics.IdempotencyHits.Inc()
	}
	return OperationResult{Payment: p, Replayed: true}, true
}

func (s *Service) cache(ctx context.Context, key string, p Payment) {
	b, err := json.Marshal(p)
	if err != nil {
		log.Printf("layer=service component=payment method=cache key=%s err=%v", key, err)
		return
	}
	if err := s.idem.Put(ctx, key, b, s.resultTTL); err != nil {
		log.Printf("layer=service component=payment method=cache key=%s err=%v", key, err)
	}
}

func (s *Service) record(ctx context.Context, aggregateID string, evt broker.Event) {
	if s.store != nil {
		_ = s.store.Append(ctx, aggregateID, evt)
	}
	if s.bus != nil {
		s.bus.Publish(ctx, evt)
	}
}
