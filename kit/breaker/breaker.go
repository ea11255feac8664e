package breaker

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
)

// ErrOpen is returned when the breaker rejects a call without attempting it.
var ErrOpen = errors.New("breaker: circuit open")

// IsOpen reports whether err is a breaker rejection.
func IsOpen(err error) bool { return errors.Is(err, ErrOpen) }

type Config struct {
	// FailureThreshold is the number of consecutive expected failures that
	// opens the circuit.
	FailureThreshold int
	// RecoveryTimeout is how long the circuit stays open before the next
	// call is attempted as a half-open probe.
	RecoveryTimeout time.Duration
	// IsFailure decides which errors count toward the threshold. Errors it
	// rejects (e.g. card declines, programming bugs) pass through without
	// affecting the circuit. Nil counts every error.
	IsFailure func(error) bool
	// OnOpen is invoked on every transition to open, off the call path.
	OnOpen func(name string)
}

// Breaker guards one named downstream dependency. Each dependency owns
// exactly one Breaker for the process lifetime; instances are safe for
// concurrent use.
type Breaker struct {
	name      string
	isFailure func(error) bool
	gb        *gobreaker.CircuitBreaker

	total   atomic.Uint64
	success atomic.Uint64
	failure atomic.Uint64
	opens   atomic.Uint64
}

func New(name string, cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = 30 * time.Second
	}
	isFailure := cfg.IsFailure
	if isFailure == nil {
		isFailure = func(err error) bool { return err != nil }
	}

	b := &Breaker{name: name, isFailure: isFailure}
	b.gb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("layer=kit component=breaker name=%s from=%s to=%s", name, from, to)
			if to == gobreaker.StateOpen {
				b.opens.Add(1)
				if cfg.OnOpen != nil {
					cfg.OnOpen(name)
				}
			}
		},
	})
	return b
}

func (b *Breaker) Name() string { return b.name }

// Execute runs op through the circuit. Rejections surface as ErrOpen;
// errors from op itself pass through unchanged.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := b.gb.Execute(func() (any, error) {
		b.total.Add(1)
		out, opErr := op(ctx)
		if opErr == nil {
			b.success.Add(1)
		} else {
			b.failure.Add(1)
		}
		return out, opErr
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrOpen
	}
	return res, err
}

// Do is a typed convenience over Execute. On failure the op's result is
// still returned: processor responses carry a decline code next to the
// error.
func Do[T any](ctx context.Context, b *Breaker, op func(ctx context.Context) (T, error)) (T, error) {
	res, err := b.Execute(ctx, func(ctx context.Context) (any, error) {
		return op(ctx)
	})
	out, _ := res.(T)
	return out, err
}

type Metrics struct {
	State               string
	ConsecutiveFailures uint32
	Total               uint64
	Success             uint64
	Failure             uint64
	Opens               uint64
	SuccessRate         float64
}

// GetMetrics snapshots the breaker state and lifetime counters. Counters
// only cover calls that reached the dependency; rejected calls are not
// counted.
func (b *Breaker) GetMetrics() Metrics {
	m := Metrics{
		State:               b.gb.State().String(),
		ConsecutiveFailures: b.gb.Counts().ConsecutiveFailures,
		Total:               b.total.Load(),
		Success:             b.success.Load(),
		Failure:             b.failure.Load(),
		Opens:               b.opens.Load(),
	}
	if m.Total > 0 {
		m.SuccessRate = float64(m.Success) / float64(m.Total)
	}
	return m
}
