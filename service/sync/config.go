package sync

import (
	"os"
	"strconv"
	"time"
)

// Config holds sync worker settings. It lives here rather than in the
// config package so the cron job table can reference SyncJob without an
// import cycle.
type Config struct {
	BaseURL    string        // remote sync endpoint base, e.g. https://backend.example.com
	Interval   time.Duration // worker tick
	BatchSize  int           // max outbox items per push
	MaxRetries int           // push retry ceiling per item
	Timeout    time.Duration // per-request network timeout
	OnStart    bool          // run one cycle immediately at boot
}

// ConfigFromEnv builds Config from environment with defaults.
func ConfigFromEnv() Config {
	cfg := Config{
		BaseURL:    os.Getenv("SYNC_BASE_URL"),
		Interval:   30 * time.Second,
		BatchSize:  50,
		MaxRetries: 5,
		Timeout:    15 * time.Second,
		OnStart:    os.Getenv("SYNC_ON_START") == "true",
	}
	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Interval = d
		}
	}
	if v := os.Getenv("SYNC_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("SYNC_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("SYNC_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}
