// Package retry runs an operation again with exponential backoff while its
// error is classified as transient.
package retry

import (
	"context"
	"math"
	"time"
)

type Config struct {
	// MaxRetries excludes the initial attempt.
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// ReadConfig suits idempotent reads against the database.
func ReadConfig() Config {
	return Config{
		MaxRetries:      2,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
		Multiplier:      2,
	}
}

func (c Config) interval(attempt int) time.Duration {
	d := float64(c.InitialInterval) * math.Pow(c.Multiplier, float64(attempt))
	if d > float64(c.MaxInterval) {
		return c.MaxInterval
	}
	return time.Duration(d)
}

// Do calls op until it succeeds, returns an error retryable rejects, the
// retries run out, or ctx ends. The last error is returned.
func Do(ctx context.Context, cfg Config, retryable func(error) bool, op func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = op(ctx); err == nil || !retryable(err) || attempt >= cfg.MaxRetries {
			return err
		}
		t := time.NewTimer(cfg.interval(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
}
