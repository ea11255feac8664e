package webhook

import (
	"context"
	"log"
	"sync"
	"time"

	"paygate/kit/db"
)

type SQLRepository struct {
	db db.Client
}

func NewSQLRepository(dbClient db.Client) *SQLRepository {
	return &SQLRepository{db: dbClient}
}

const (
	qEventInsert        = "INSERT INTO webhook_events (event_id, event_type, payload, signature, received_at, processed) VALUES (?, ?, ?, ?, ?, ?)"
	qEventGet           = "SELECT event_id, event_type, payload, signature, received_at, processed FROM webhook_events WHERE event_id = ?"
	qEventMarkProcessed = "UPDATE webhook_events SET processed = 1 WHERE event_id = ?"
)

func (r *SQLRepository) Save(ctx context.Context, e *Event) error {
	processed := int64(0)
	if e.Processed {
		processed = 1
	}
	if err := r.db.Exec(
		ctx,
		qEventInsert,
		e.EventID,
		e.EventType,
		string(e.Payload),
		e.Signature,
		e.ReceivedAt.UTC().Format(time.RFC3339Nano),
		processed,
	); err != nil {
		log.Printf("layer=repo component=webhook repo=SQLRepository method=Save event_id=%s err=%v", e.EventID, err)
		return err
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, eventID string) (*Event, error) {
	row, err := r.db.QueryRow(ctx, qEventGet, eventID)
	if err != nil {
		log.Printf("layer=repo component=webhook repo=SQLRepository method=Get event_id=%s err=%v", eventID, err)
		return nil, err
	}
	var (
		e          Event
		payload    string
		receivedAt string
	)
	if err := row.Scan(&e.EventID, &e.EventType, &payload, &e.Signature, &receivedAt, &e.Processed); err != nil {
		if !db.IsNotFound(err) {
			log.Printf("layer=repo component=webhook repo=SQLRepository method=Get event_id=%s err=%v", eventID, err)
		}
		return nil, err
	}
	e.Payload = []byte(payload)
	if t, err := time.Parse(time.RFC3339Nano, receivedAt); err == nil {
		e.ReceivedAt = t
	}
	return &e, nil
}

func (r *SQLRepository) MarkProcessed(ctx context.Context, eventID string) error {
	if err := r.db.Exec(ctx, qEventMarkProcessed, eventID); err != nil {
		log.Printf("layer=repo component=webhook repo=SQLRepository method=MarkProcessed event_id=%s err=%v", eventID, err)
		return err
	}
	return nil
}

type InMemoryRepository struct {
	mu   sync.Mutex
	data map[string]*Event
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[string]*Event)}
}

func (r *InMemoryRepository) Save(ctx context.Context, e *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[e.EventID]; exists {
		return db.ErrConflict
	}
	cpy := *e
	r.data[e.EventID] = &cpy
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, eventID string) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[eventID]
	if !ok {
		return nil, db.ErrNotFound
	}
	cpy := *e
	return &cpy, nil
}

func (r *InMemoryRepository) MarkProcessed(ctx context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[eventID]
	if !ok {
		return db.ErrNotFound
	}
	e.Processed = true
	return nil
}
