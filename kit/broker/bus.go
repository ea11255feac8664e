package broker

import (
	"context"
	"log"
	"sync"
)

// Event is anything that can travel on the bus. Name doubles as the
// subscription topic.
type Event interface {
	Name() string
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) []error
}

type Handler func(ctx context.Context, evt Event) error

// Bus is a synchronous in-process pub/sub fan-out. Handler errors and
// panics are collected, never propagated to the publisher's caller.
type Bus struct {
	mu       sync.RWMutex
	closed   bool
	handlers map[string][]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

func (b *Bus) Subscribe(eventName string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.handlers[eventName] = append(b.handlers[eventName], h)
}

func (b *Bus) Publish(ctx context.Context, evt Event) []error {
	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers[evt.Name()]...)
	b.mu.RUnlock()

	var errs []error
	for i, h := range hs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("broker handler panic event=%s handler_index=%d panic=%v", evt.Name(), i, r)
					errs = append(errs, context.Canceled)
				}
			}()
			if err := h(ctx, evt); err != nil {
				log.Printf("broker handler error event=%s handler_index=%d error=%v", evt.Name(), i, err)
				errs = append(errs, err)
			}
		}()
	}
	return errs
}

// Close drops all subscriptions; later publishes become no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[string][]Handler)
}
