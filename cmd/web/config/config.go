package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr             string
	WebhookSecret    string
	RedisAddr        string
	DataDir          string
	FailureThreshold int
	RecoveryTimeout  time.Duration
	MaxRetries       int
	CallTimeout      time.Duration
	ResultTTL        time.Duration
}

func Load() Config {
	return Config{
		Addr:             envString("PAYGATE_ADDR", ":8080"),
		WebhookSecret:    envString("PAYGATE_WEBHOOK_SECRET", "dev-webhook-secret"),
		RedisAddr:        envString("PAYGATE_REDIS_ADDR", ""),
		DataDir:          envString("PAYGATE_DATA_DIR", "./out"),
		FailureThreshold: envInt("PAYGATE_BREAKER_FAILURES", 5),
		RecoveryTimeout:  envDuration("PAYGATE_BREAKER_RECOVERY", 30*time.Second),
		MaxRetries:       envInt("PAYGATE_MAX_RETRIES", 3),
		CallTimeout:      envDuration("PAYGATE_CALL_TIMEOUT", 5*time.Second),
		ResultTTL:        envDuration("PAYGATE_RESULT_TTL", time.Hour),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
