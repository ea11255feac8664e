package processor

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Transient failures: eligible for retry, counted by the circuit breaker.
var (
	ErrTimeout = errors.New("processor: timeout")
	ErrServer  = errors.New("processor: 5xx")
)

// Permanent failures: surfaced immediately, never retried, never counted.
var (
	ErrDeclined     = errors.New("processor: card declined")
	ErrFraudBlocked = errors.New("processor: fraud blocked")
)

// IsTransient reports whether err is a network-class failure worth
// retrying and worth counting toward the circuit breaker.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServer) ||
		errors.Is(err, context.DeadlineExceeded)
}

// IsPermanent reports whether err is a definitive processor rejection.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrDeclined) || errors.Is(err, ErrFraudBlocked)
}

// Result carries the fields of a processor response this core needs.
type Result struct {
	TransactionID string
	ResponseCode  string
	ResponseText  string
}

// Client is the outbound contract to the card processor.
type Client interface {
	Charge(ctx context.Context, amount int64, currency, methodToken string) (Result, error)
	Refund(ctx context.Context, transactionID string, amount int64) (Result, error)
	Void(ctx context.Context, transactionID string) (Result, error)
}

// FakeClient simulates the processor for local runs: failures are keyed off
// the amount so behavior is reproducible.
type FakeClient struct {
	Latency time.Duration
}

func NewFakeClient() *FakeClient {
	return &FakeClient{Latency: 50 * time.Millisecond}
}

func (c *FakeClient) Charge(ctx context.Context, amount int64, currency, methodToken string) (Result, error) {
	if err := c.wait(ctx); err != nil {
		return Result{}, err
	}
	switch {
	case amount%13 == 0:
		return Result{ResponseCode: "2", ResponseText: "declined"}, ErrDeclined
	case amount%7 == 0:
		return Result{ResponseCode: "503", ResponseText: "server error"}, ErrServer
	case amount%5 == 0:
		return Result{ResponseCode: "408", ResponseText: "timeout"}, ErrTimeout
	}
	return Result{
		TransactionID: fmt.Sprintf("txn_%s_%d", methodToken, amount),
		ResponseCode:  "1",
		ResponseText:  "approved",
	}, nil
}

func (c *FakeClient) Refund(ctx context.Context, transactionID string, amount int64) (Result, error) {
	if err := c.wait(ctx); err != nil {
		return Result{}, err
	}
	if amount%7 == 0 {
		return Result{ResponseCode: "503", ResponseText: "server error"}, ErrServer
	}
	return Result{
		TransactionID: fmt.Sprintf("rf_%s_%d", transactionID, amount),
		ResponseCode:  "1",
		ResponseText:  "refund approved",
	}, nil
}

func (c *FakeClient) Void(ctx context.Context, transactionID string) (Result, error) {
	if err := c.wait(ctx); err != nil {
		return Result{}, err
	}
	return Result{
		TransactionID: fmt.Sprintf("vd_%s", transactionID),
		ResponseCode:  "1",
		ResponseText:  "voided",
	}, nil
}

func (c *FakeClient) wait(ctx context.Context) error {
	if c.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
