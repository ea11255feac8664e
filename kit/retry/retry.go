package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy controls exponential backoff between attempts. A zero MaxRetries
// means the operation runs once with no retry.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     bool
}

// DefaultPolicy is suitable for calls to the external processor.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   2 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// Delay computes the backoff before retry attempt n (0-indexed):
// min(BaseDelay * Multiplier^n, MaxDelay), plus up to 10% uniform jitter
// when enabled. The result never exceeds MaxDelay * 1.1.
func (p Policy) Delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	mult := p.Multiplier
	if mult <= 1 {
		mult = 2.0
	}
	max := p.MaxDelay
	if max < base {
		max = base
	}

	d := time.Duration(float64(base) * math.Pow(mult, float64(attempt)))
	if d > max || d <= 0 {
		d = max
	}
	if p.Jitter {
		d += time.Duration(rand.Float64() * 0.1 * float64(d))
	}
	return d
}

// RetryableFunc reports whether an error is worth another attempt.
type RetryableFunc func(error) bool

// Do runs op up to policy.MaxRetries+1 times. Between attempts it sleeps
// for the policy delay, yielding on ctx cancellation. The last result and
// error are returned unchanged; non-retryable errors stop the loop
// immediately.
func Do[T any](ctx context.Context, policy Policy, retryable RetryableFunc, op func(ctx context.Context) (T, error)) (T, error) {
	var lastRes T
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, policy.Delay(attempt-1)); err != nil {
				return lastRes, err
			}
		}

		res, err := op(ctx)
		if err == nil {
			return res, nil
		}
		lastRes, lastErr = res, err

		if retryable != nil && !retryable(err) {
			return res, err
		}
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
	}
	return lastRes, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
