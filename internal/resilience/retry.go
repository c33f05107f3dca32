// Package resilience implements the retry/backoff layer every upstream
// provider call runs through: attempt-indexed exponential backoff with a
// per-provider base delay, and a transient-error taxonomy.
package resilience

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Profile controls retry behavior for one upstream provider. The completion
// provider uses a long base delay because its rate limits reset slowly;
// search and company-database providers recover in seconds.
type Profile struct {
	// Service names the provider in logs and exhaustion errors.
	Service string

	// MaxAttempts is the total number of attempts including the first.
	// Default: 3.
	MaxAttempts int

	// BaseDelay anchors the backoff curve. The wait before retry k
	// (k = 1, 2, ...) is BaseDelay * 2^k: waits double each time and the
	// first wait is already 2x the base. Default: 2s.
	BaseDelay time.Duration

	// ShouldRetry overrides the default IsTransient check when non-nil.
	ShouldRetry func(err error) bool

	// Breaker, when non-nil, gates every attempt through a shared circuit
	// breaker so a provider that is down fails fast across the worker pool
	// instead of each worker burning its full backoff schedule.
	Breaker *Breaker
}

// CompletionProfile is the default profile for the completion provider:
// waits of 60s, 120s, 240s at the default base.
func CompletionProfile() Profile {
	return Profile{Service: "completion", MaxAttempts: 3, BaseDelay: 30 * time.Second}
}

// SearchProfile is the default profile for search, content, and
// company-database providers: waits of 4s, 8s, 16s at the default base.
func SearchProfile(service string) Profile {
	return Profile{Service: service, MaxAttempts: 3, BaseDelay: 2 * time.Second}
}

// Wait returns the backoff before retry number k (1-based).
func (p Profile) Wait(k int) time.Duration {
	return p.BaseDelay * (1 << k)
}

func (p Profile) withDefaults() Profile {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 2 * time.Second
	}
	if p.Service == "" {
		p.Service = "upstream"
	}
	return p
}

// DoVal executes fn with the profile's retry policy and preserves the value
// from the successful attempt. Only transient errors are retried; context
// cancellation stops retries immediately. After exhausting all attempts the
// returned error names the attempt count and the last upstream message.
func DoVal[T any](ctx context.Context, p Profile, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()
	shouldRetry := p.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if p.Breaker != nil {
			if err := p.Breaker.Allow(); err != nil {
				return zero, err
			}
		}

		val, err := fn(ctx)
		if p.Breaker != nil {
			p.Breaker.Record(err != nil && shouldRetry(err))
		}
		if err == nil {
			return val, nil
		}
		lastErr = err

		// Don't retry on context cancellation.
		if ctx.Err() != nil {
			return zero, lastErr
		}

		if !shouldRetry(lastErr) {
			return zero, lastErr
		}

		// Don't sleep after the last attempt.
		if attempt >= p.MaxAttempts-1 {
			break
		}

		wait := p.Wait(attempt + 1)
		zap.L().Warn("retrying upstream call",
			zap.String("service", p.Service),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(lastErr),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, eris.Errorf("%s: failed after %d retries. Last error: %s",
		p.Service, p.MaxAttempts, lastErr.Error())
}

// Do is DoVal for functions with no return value.
func Do(ctx context.Context, p Profile, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
