// Package retry provides a reusable backoff policy for collaborator calls.
package retry

import (
	"context"
	"errors"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

// Policy describes how a failing call is retried.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable reports whether an error is transient. Nil retries every error
	// except context cancellation.
	Retryable func(error) bool
}

// Default is used for short persistence and notification calls.
var Default = Policy{
	MaxAttempts: 3,
	BaseDelay:   200 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

// None runs the call exactly once.
var None = Policy{MaxAttempts: 1}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempts are exhausted. The last error is returned unwrapped.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	b := goretry.NewExponential(base)
	if p.MaxDelay > 0 {
		b = goretry.WithCappedDuration(p.MaxDelay, b)
	}
	b = goretry.WithJitterPercent(10, b)
	b = goretry.WithMaxRetries(uint64(attempts-1), b)

	return goretry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p.retryable(err) {
			return goretry.RetryableError(err)
		}
		return err
	})
}

func (p Policy) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// WithRetryable returns a copy of p using the given predicate.
func (p Policy) WithRetryable(fn func(error) bool) Policy {
	p.Retryable = fn
	return p
}
