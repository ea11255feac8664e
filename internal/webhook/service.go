package webhook

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"paygate/internal/events"
	"paygate/internal/payment"
	"paygate/kit/broker"
	"paygate/kit/db"
	"paygate/kit/observability"
)

// Supported processor event types.
const (
	EventTypeRefundCreated   = "refund.created"
	EventTypePaymentCaptured = "payment.captured"
	EventTypePaymentSettled  = "payment.settled"
	EventTypePaymentVoided   = "payment.voided"
)

// Service is the webhook intake: it verifies authenticity, deduplicates by
// event id and applies the resulting payment transition. Replay re-runs
// processing for a stored event; the underlying mutations are keyed on the
// event id so a replay never double-applies.
type Service struct {
	repo     RepositoryContract
	payments PaymentContract
	bus      PublisherContract
	metrics  *observability.Metrics
	secret   []byte
}

func NewService(repo RepositoryContract, payments PaymentContract, bus PublisherContract, metrics *observability.Metrics, secret []byte) *Service {
	return &Service{repo: repo, payments: payments, bus: bus, metrics: metrics, secret: secret}
}

// Receive handles one inbound delivery. The signature is checked against
// the exact raw bytes before anything is parsed or stored.
func (s *Service) Receive(ctx context.Context, rawBody []byte, signature string) (Outcome, error) {
	if !VerifySignature(rawBody, signature, s.secret) {
		log.Printf("layer=service component=webhook method=Receive err=%v", ErrBadSignature)
		if s.metrics != nil {
			s.metrics.WebhooksBadSig.Inc()
		}
		s.publish(ctx, events.WebhookRejected{Reason: "bad signature", At: time.Now().UTC()})
		return Outcome{}, ErrBadSignature
	}

	var env Envelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		log.Printf("layer=service component=webhook method=Receive err=%v", err)
		return Outcome{}, payment.NewValidationError("malformed webhook body")
	}
	if env.EventID == "" || env.EventType == "" {
		return Outcome{}, payment.NewValidationError("webhook body missing eventId or eventType")
	}

	if _, err := s.repo.Get(ctx, env.EventID); err == nil {
		return s.duplicate(ctx, env.EventID), nil
	} else if !db.IsNotFound(err) {
		return Outcome{}, err
	}

	evt := &Event{
		EventID:    env.EventID,
		EventType:  env.EventType,
		Payload:    env.Payload,
		Signature:  signature,
		ReceivedAt: time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, evt); err != nil {
		if db.IsConflict(err) {
			// lost the race against a concurrent delivery of the same event
			return s.duplicate(ctx, env.EventID), nil
		}
		log.Printf("layer=service component=webhook method=Receive event_id=%s err=%v", env.EventID, err)
		return Outcome{}, err
	}
	if s.metrics != nil {
		s.metrics.WebhooksReceived.Inc()
	}
	s.publish(ctx, events.WebhookReceived{EventID: evt.EventID, EventType: evt.EventType, At: time.Now().UTC()})

	if err := s.process(ctx, evt); err != nil {
		// the event is stored but unprocessed; a later replay can retry it
		return Outcome{EventID: evt.EventID}, err
	}
	return Outcome{EventID: evt.EventID}, nil
}

// IsDuplicate reports whether eventID has already been received.
func (s *Service) IsDuplicate(ctx context.Context, eventID string) (bool, error) {
	if _, err := s.repo.Get(ctx, eventID); err != nil {
		if db.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Replay re-runs processing for a previously stored event.
func (s *Service) Replay(ctx context.Context, eventID string) error {
	evt, err := s.repo.Get(ctx, eventID)
	if err != nil {
		log.Printf("layer=service component=webhook method=Replay event_id=%s err=%v", eventID, err)
		return err
	}
	if s.metrics != nil {
		s.metrics.WebhooksReplayed.Inc()
	}
	s.publish(ctx, events.WebhookReplayed{EventID: eventID, At: time.Now().UTC()})
	return s.process(ctx, evt)
}

func (s *Service) process(ctx context.Context, e *Event) error {
	var p PaymentPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return payment.NewValidationError("malformed payload for event %s", e.EventID)
	}
	if p.PaymentID == "" {
		return payment.NewValidationError("event %s payload missing payment_id", e.EventID)
	}

	var err error
	switch e.EventType {
	case EventTypeRefundCreated:
		_, err = s.payments.ApplyWebhookRefund(ctx, e.EventID, p.PaymentID, p.Amount)
	case EventTypePaymentCaptured:
		_, err = s.payments.ApplyWebhookCapture(ctx, e.EventID, p.PaymentID, p.TransactionID)
	case EventTypePaymentSettled:
		_, err = s.payments.ApplyWebhookSettle(ctx, e.EventID, p.PaymentID)
	case EventTypePaymentVoided:
		_, err = s.payments.ApplyWebhookVoid(ctx, e.EventID, p.PaymentID)
	default:
		err = payment.NewValidationError("unsupported event type %q", e.EventType)
	}
	if err != nil {
		log.Printf("layer=service component=webhook method=process event_id=%s event_type=%s err=%v", e.EventID, e.EventType, err)
		return err
	}
	return s.repo.MarkProcessed(ctx, e.EventID)
}

func (s *Service) duplicate(ctx context.Context, eventID string) Outcome {
	log.Printf("layer=service component=webhook method=Receive event_id=%s duplicate=true", eventID)
	if s.metrics != nil {
		s.metrics.WebhooksDuplicate.Inc()
	}
	s.publish(ctx, events.WebhookDuplicate{EventID: eventID, At: time.Now().UTC()})
	return Outcome{EventID: eventID, Duplicate: true}
}

func (s *Service) publish(ctx context.Context, evt broker.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, evt)
}
