package db

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sync"
)

// MockClient is an in-memory stand-in for the relational layer: it
// understands exactly the queries the repositories issue. The real schema
// lives outside this core.
type MockClient struct {
	mu sync.Mutex

	payments map[string]map[string]any
	events   map[string]map[string]any

	paymentsPersistPath string
}

type MockOption func(*MockClient) error

func NewMockClient(opts ...MockOption) (*MockClient, error) {
	c := &MockClient{
		payments: make(map[string]map[string]any),
		events:   make(map[string]map[string]any),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func WithPaymentsJSONFile(path string) MockOption {
	return func(c *MockClient) error {
		b, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return errors.Join(ErrInternal, err)
		}
		if len(b) == 0 {
			return nil
		}
		var m map[string]map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return errors.Join(ErrInternal, err)
		}
		c.payments = m
		return nil
	}
}

func WithPaymentsJSONPersistence(path string) MockOption {
	return func(c *MockClient) error {
		c.paymentsPersistPath = path
		return nil
	}
}

func (c *MockClient) persistPaymentsLocked() error {
	if c.paymentsPersistPath == "" {
		return nil
	}
	dir := filepath.Dir(c.paymentsPersistPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("layer=client component=db method=persistPaymentsLocked path=%s err=%v", c.paymentsPersistPath, err)
		return errors.Join(ErrInternal, err)
	}

	b, err := json.MarshalIndent(c.payments, "", "  ")
	if err != nil {
		log.Printf("layer=client component=db method=persistPaymentsLocked path=%s err=%v", c.paymentsPersistPath, err)
		return errors.Join(ErrInternal, err)
	}
	b = append(b, '\n')

	tmp := c.paymentsPersistPath + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		log.Printf("layer=client component=db method=persistPaymentsLocked path=%s err=%v", c.paymentsPersistPath, err)
		return errors.Join(ErrInternal, err)
	}
	if err := os.Rename(tmp, c.paymentsPersistPath); err != nil {
		log.Printf("layer=client component=db method=persistPaymentsLocked path=%s err=%v", c.paymentsPersistPath, err)
		return errors.Join(ErrInternal, err)
	}
	return nil
}

type mockRow struct {
	vals []any
	err  error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return errors.Join(ErrInternal, errors.New("scan arg mismatch"))
	}
	for i := range dest {
		switch d := dest[i].(type) {
		case *string:
			v, _ := r.vals[i].(string)
			*d = v
		case *int64:
			v, _ := toInt64(r.vals[i])
			*d = v
		case *int:
			v, _ := toInt64(r.vals[i])
			*d = int(v)
		case *bool:
			v, _ := toInt64(r.vals[i])
			*d = v != 0
		default:
			dv := reflect.ValueOf(dest[i])
			if dv.Kind() != reflect.Ptr || dv.IsNil() {
				return errors.Join(ErrInternal, errors.New("unsupported scan type"))
			}
			ev := dv.Elem()
			switch ev.Kind() {
			case reflect.String:
				if s, ok := r.vals[i].(string); ok {
					ev.SetString(s)
					continue
				}
			case reflect.Int, reflect.Int64:
				if n, ok := toInt64(r.vals[i]); ok {
					ev.SetInt(n)
					continue
				}
			}
			return errors.Join(ErrInternal, errors.New("unsupported scan type"))
		}
	}
	return nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case float64:
		// values round-tripped through the JSON persistence file
		return int64(n), true
	}
	return 0, false
}

func toString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	if ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

const (
	qMockPaymentUpsert = "INSERT INTO payments (payment_id, amount, currency, status, refunded_amount, refund_count, processor_txn_id, reason) VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE amount=?, currency=?, status=?, refunded_amount=?, refund_count=?, processor_txn_id=?, reason=?"
	qMockPaymentGet    = "SELECT payment_id, amount, currency, status, refunded_amount, refund_count, processor_txn_id, reason FROM payments WHERE payment_id = ?"

	qMockEventInsert        = "INSERT INTO webhook_events (event_id, event_type, payload, signature, received_at, processed) VALUES (?, ?, ?, ?, ?, ?)"
	qMockEventGet           = "SELECT event_id, event_type, payload, signature, received_at, processed FROM webhook_events WHERE event_id = ?"
	qMockEventMarkProcessed = "UPDATE webhook_events SET processed = 1 WHERE event_id = ?"
)

func (c *MockClient) Exec(ctx context.Context, query string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch query {
	case qMockPaymentUpsert:
		if len(args) != 15 {
			return errors.Join(ErrInternal, errors.New("invalid args"))
		}
		paymentID, _ := toString(args[0])
		amount, _ := toInt64(args[1])
		currency, _ := toString(args[2])
		status, _ := toString(args[3])
		refunded, _ := toInt64(args[4])
		refundCount, _ := toInt64(args[5])
		txnID, _ := toString(args[6])
		reason, _ := toString(args[7])
		c.payments[paymentID] = map[string]any{
			"payment_id":       paymentID,
			"amount":           amount,
			"currency":         currency,
			"status":           status,
			"refunded_amount":  refunded,
			"refund_count":     refundCount,
			"processor_txn_id": txnID,
			"reason":           reason,
		}
		return c.persistPaymentsLocked()
	case qMockEventInsert:
		if len(args) != 6 {
			return errors.Join(ErrInternal, errors.New("invalid args"))
		}
		eventID, _ := toString(args[0])
		if _, exists := c.events[eventID]; exists {
			// unique constraint on event_id is the dedup enforcement point
			return ErrConflict
		}
		eventType, _ := toString(args[1])
		payload, _ := toString(args[2])
		signature, _ := toString(args[3])
		receivedAt, _ := toString(args[4])
		processed, _ := toInt64(args[5])
		c.events[eventID] = map[string]any{
			"event_id":    eventID,
			"event_type":  eventType,
			"payload":     payload,
			"signature":   signature,
			"received_at": receivedAt,
			"processed":   processed,
		}
		return nil
	case qMockEventMarkProcessed:
		if len(args) != 1 {
			return errors.Join(ErrInternal, errors.New("invalid args"))
		}
		eventID, _ := toString(args[0])
		evt, ok := c.events[eventID]
		if !ok {
			return ErrNotFound
		}
		evt["processed"] = int64(1)
		return nil
	default:
		log.Printf("layer=client component=db method=Exec err=unsupported query query=%q", query)
		return errors.Join(ErrInternal, errors.New("unsupported query"))
	}
}

func (c *MockClient) QueryRow(ctx context.Context, query string, args ...any) (Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch query {
	case qMockPaymentGet:
		if len(args) != 1 {
			return &mockRow{err: errors.Join(ErrInternal, errors.New("invalid args"))}, nil
		}
		paymentID, _ := toString(args[0])
		p, ok := c.payments[paymentID]
		if !ok {
			return &mockRow{err: ErrNotFound}, nil
		}
		return &mockRow{vals: []any{
			p["payment_id"], p["amount"], p["currency"], p["status"],
			p["refunded_amount"], p["refund_count"], p["processor_txn_id"], p["reason"],
		}}, nil
	case qMockEventGet:
		if len(args) != 1 {
			return &mockRow{err: errors.Join(ErrInternal, errors.New("invalid args"))}, nil
		}
		eventID, _ := toString(args[0])
		e, ok := c.events[eventID]
		if !ok {
			return &mockRow{err: ErrNotFound}, nil
		}
		return &mockRow{vals: []any{
			e["event_id"], e["event_type"], e["payload"],
			e["signature"], e["received_at"], e["processed"],
		}}, nil
	default:
		log.Printf("layer=client component=db method=QueryRow err=unsupported query query=%q", query)
		return &mockRow{err: errors.Join(ErrInternal, errors.New("unsupported query"))}, nil
	}
}
