package webhook

import (
	"context"

	"paygate/internal/payment"
	"paygate/kit/broker"
)

// RepositoryContract define webhook event storage responsibility. Save must
// enforce event id uniqueness (db.ErrConflict on a duplicate) so two
// concurrent deliveries of the same event cannot both proceed.
type RepositoryContract interface {
	Get(ctx context.Context, eventID string) (*Event, error)
	Save(ctx context.Context, e *Event) error
	MarkProcessed(ctx context.Context, eventID string) error
}

// PaymentContract define the lifecycle transitions intake may trigger.
type PaymentContract interface {
	ApplyWebhookCapture(ctx context.Context, eventID, paymentID, transactionID string) (payment.OperationResult, error)
	ApplyWebhookRefund(ctx context.Context, eventID, paymentID string, amount int64) (payment.OperationResult, error)
	ApplyWebhookSettle(ctx context.Context, eventID, paymentID string) (payment.OperationResult, error)
	ApplyWebhookVoid(ctx context.Context, eventID, paymentID string) (payment.OperationResult, error)
}

// PublisherContract define publish responsibility (broker).
type PublisherContract interface {
	Publish(ctx context.Context, evt broker.Event) []error
}
