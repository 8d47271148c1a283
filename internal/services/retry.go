package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"
)

const maxBackoff = 8 * time.Second

// RetryPolicy bounds retries of idempotent reads (embedding, vector search).
// Generation calls are never retried here.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

func retryWithBackoff[T any](ctx context.Context, policy RetryPolicy, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := policy.attempts()
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		if attempt < attempts-1 {
			delay := withJitter(expBackoff(attempt, policy.InitialDelay, maxBackoff))
			log.Printf("⚠️  %s attempt %d failed: %v. Retrying in %s...", op, attempt+1, err, delay)
			if !sleepWithContext(ctx, delay) {
				return zero, fmt.Errorf("context cancelled: %w", ctx.Err())
			}
		}
	}

	return zero, fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func expBackoff(attempt int, initial, max time.Duration) time.Duration {
	if attempt <= 0 {
		return initial
	}
	d := initial << attempt
	if d <= 0 {
		return max
	}
	if max > 0 && d > max {
		return max
	}
	return d
}

// +/-20% jitter.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	j := 0.8 + rand.Float64()*0.4
	return time.Duration(float64(d) * j)
}
