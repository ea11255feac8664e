package notification

import (
	"context"
	"fmt"

	"paygate/internal/events"
	"paygate/kit/broker"
	"paygate/kit/observability"
)

// Service is a stand-in for the customer notification channel: it logs
// what would be sent for the payment outcomes that matter to cardholders.
type Service struct {
	logger *observability.Logger
}

func NewService(logger *observability.Logger) *Service {
	return &Service{logger: logger}
}

func (s *Service) Notify(ctx context.Context, paymentID string, msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Info("notify", "payment_id", paymentID, "msg", msg)
}

// HandleEvent is subscribed on the bus for outcome events.
func (s *Service) HandleEvent(ctx context.Context, evt broker.Event) error {
	switch e := evt.(type) {
	case events.PaymentCaptured:
		s.Notify(ctx, e.PaymentID, fmt.Sprintf("payment of %d captured", e.Amount))
	case events.PaymentRefunded:
		s.Notify(ctx, e.PaymentID, fmt.Sprintf("refund of %d issued", e.Amount))
	case events.PaymentVoided:
		s.Notify(ctx, e.PaymentID, "payment cancelled")
	case events.PaymentFailed:
		s.Notify(ctx, e.PaymentID, "payment failed: "+e.Reason)
	}
	return nil
}
