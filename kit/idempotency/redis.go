package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "idem:"

type redisRecord struct {
	Result   []byte    `json:"result"`
	StoredAt time.Time `json:"stored_at"`
	TTLMs    int64     `json:"ttl_ms"`
}

// RedisStore backs the idempotency cache with Redis. Write-once semantics
// come from SET NX: a concurrent duplicate put loses silently and the first
// stored result remains authoritative. Expiry is native TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		log.Printf("layer=kit component=idempotency store=redis method=Get key=%s err=%v", key, err)
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Printf("layer=kit component=idempotency store=redis method=Get key=%s err=%v", key, err)
		return nil, fmt.Errorf("redis get decode: %w", err)
	}
	return &Record{
		Key:      key,
		Result:   rec.Result,
		StoredAt: rec.StoredAt,
		TTL:      time.Duration(rec.TTLMs) * time.Millisecond,
	}, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, result []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	raw, err := json.Marshal(redisRecord{Result: result, StoredAt: time.Now().UTC(), TTLMs: ttl.Milliseconds()})
	if err != nil {
		return fmt.Errorf("redis put encode: %w", err)
	}

	if err := s.client.SetNX(ctx, redisKeyPrefix+key, raw, ttl).Err(); err != nil {
		log.Printf("layer=kit component=idempotency store=redis method=Put key=%s err=%v", key, err)
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}
