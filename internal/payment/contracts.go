package payment

import (
	"context"

	"paygate/kit/broker"
)

// RepositoryContract define payment repository responsibility.
type RepositoryContract interface {
	Save(ctx context.Context, p *Payment) error
	Get(ctx context.Context, paymentID string) (*Payment, error)
}

// PublisherContract define publish responsibility (broker).
type PublisherContract interface {
	Publish(ctx context.Context, evt broker.Event) []error
}

// StoreContract define append responsibility (event store).
type StoreContract interface {
	Append(ctx context.Context, aggregateID string, evt broker.Event) error
}
