package grading

import (
	"context"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"github.com/mind-engage/coeus/internal/learning"
)

// RetryConfig controls how a grade that lost a lock race is retried.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig retries a conflicted grade up to three times.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 50 * time.Millisecond,
		MaxWait:     time.Second,
		Multiplier:  2.0,
	}
}

// withRetry runs op until it succeeds, fails with a non-retryable error, or
// the attempts run out. Only learning.ErrConflict is retried.
func withRetry[T any](ctx context.Context, cfg RetryConfig, op func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	attempts := max(cfg.MaxAttempts, 1)
	for attempt := range attempts {
		out, err := op()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !learning.IsRetryable(err) {
			return zero, err
		}
		// Last attempt: don't sleep, just return the error.
		if attempt == attempts-1 {
			break
		}

		wait := cfg.backoff(attempt)
		log.Printf("grading: conflict on attempt %d/%d, retrying in %s: %v", attempt+1, attempts, wait, err)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
	}
	return zero, lastErr
}

func (c RetryConfig) backoff(attempt int) time.Duration {
	mult := c.Multiplier
	if mult < 1 {
		mult = 1
	}
	wait := float64(c.InitialWait) * math.Pow(mult, float64(attempt))
	if c.MaxWait > 0 && wait > float64(c.MaxWait) {
		wait = float64(c.MaxWait)
	}

	// Add ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
