package idempotency

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long a cached result stays valid.
const DefaultTTL = time.Hour

// Record is the cached result of a completed guarded operation. Records are
// write-once per key within their TTL window.
type Record struct {
	Key      string
	Result   []byte
	StoredAt time.Time
	TTL      time.Duration
}

// Store maps operation fingerprints to previously produced results.
// Get never returns an expired record. Put must not overwrite a still-valid
// record: the first write within a TTL window wins.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	Put(ctx context.Context, key string, result []byte, ttl time.Duration) error
}

// MemoryStore is a mutex-protected in-process Store with lazy expiry.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record), now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	if s.now().After(rec.StoredAt.Add(rec.TTL)) {
		delete(s.records, key)
		return nil, nil
	}
	cpy := *rec
	return &cpy, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, result []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[key]; ok && !s.now().After(rec.StoredAt.Add(rec.TTL)) {
		// first write wins; a duplicate put must not corrupt the stored result
		return nil
	}
	s.records[key] = &Record{Key: key, Result: append([]byte(nil), result...), StoredAt: s.now(), TTL: ttl}
	return nil
}

// KeyLock hands out one mutex per key so callers can serialize the
// get→compute→put window for identical fingerprints within this process.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*keyEntry
}

type keyEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[string]*keyEntry)}
}

func (l *KeyLock) Lock(key string) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &keyEntry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

func (l *KeyLock) Unlock(key string) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if ok {
		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}
	}
	l.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}
