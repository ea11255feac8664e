package webhook

import (
	"context"

	"paygate/internal/payment"
	"paygate/kit/broker"

	"github.com/stretchr/testify/mock"
)

type PaymentMock struct {
	mock.Mock
	PaymentContract
}

func (m *PaymentMock) ApplyWebhookCapture(ctx context.Context, eventID, paymentID, transactionID string) (payment.OperationResult, error) {
	args := m.Called(ctx, eventID, paymentID, transactionID)
	res, _ := args.Get(0).(payment.OperationResult)
	return res, args.Error(1)
}

func (m *PaymentMock) ApplyWebhookRefund(ctx context.Context, eventID, paymentID string, amount int64) (payment.OperationResult, error) {
	args := m.Called(ctx, eventID, paymentID, amount)
	res, _ := args.Get(0).(payment.OperationResult)
	return res, args.Error(1)
}

func (m *PaymentMock) ApplyWebhookSettle(ctx context.Context, eventID, paymentID string) (payment.OperationResult, error) {
	args := m.Called(ctx, eventID, paymentID)
	res, _ := args.Get(0).(payment.OperationResult)
	return res, args.Error(1)
}

func (m *PaymentMock) ApplyWebhookVoid(ctx context.Context, eventID, paymentID string) (payment.OperationResult, error) {
	args := m.Called(ctx, eventID, paymentID)
	res, _ := args.Get(0).(payment.OperationResult)
	return res, args.Error(1)
}

type PublisherMock struct {
	mock.Mock
	PublisherContract
}

func (m *PublisherMock) Publish(ctx context.Context, evt broker.Event) []error {
	args := m.Called(ctx, evt)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]error)
}
