/*
Package retry re-invokes a fallible action with exponential backoff.

The wait before retry n (zero-indexed) is 2^n * BaseDelay, there is no jitter, and there is no
wait after the final attempt. Waiting is cancelled together with the caller's context.
*/
package retry

import (
	"context"
	"errors"
	"time"

	goretry "github.com/sethvargo/go-retry"

	"apitutor/internal/pkg/logx"
)

const (
	// DefaultMaxAttempts is the number of attempts used by DefaultPolicy.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the first backoff interval used by DefaultPolicy.
	DefaultBaseDelay = time.Second
)

// Policy bounds a retried call.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first. Values below 1 mean 1.
	MaxAttempts int

	// BaseDelay is the wait after the first failure; it doubles after every further failure.
	BaseDelay time.Duration

	// MaxDelay caps a single wait. Zero means no cap.
	MaxDelay time.Duration
}

// DefaultPolicy returns three attempts with a one second base delay.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// Backoff returns a fresh backoff schedule for one call.
func (p Policy) Backoff() goretry.Backoff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var base goretry.Backoff
	if p.BaseDelay > 0 {
		base = goretry.NewExponential(p.BaseDelay)
	} else {
		base = goretry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	}
	if p.MaxDelay > 0 {
		base = goretry.WithCappedDuration(p.MaxDelay, base)
	}

	return goretry.WithMaxRetries(uint64(attempts-1), base)
}

// permanentError marks a failure that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Do returns it at once instead of retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls action until it succeeds, returns a Permanent error, or p.MaxAttempts calls have failed.
// The error of the last attempt is returned unchanged. If ctx is cancelled while waiting,
// ctx.Err() is returned.
func Do[T any](ctx context.Context, p Policy, action func(ctx context.Context) (T, error)) (T, error) {
	return run(ctx, p.Backoff(), action)
}

func run[T any](ctx context.Context, b goretry.Backoff, action func(ctx context.Context) (T, error)) (T, error) {
	var result T
	attempt := 0

	err := goretry.Do(ctx, b, func(ctx context.Context) error {
		attempt++

		v, err := action(ctx)
		if err == nil {
			result = v
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		logx.Debug("Attempt failed", "attempt", attempt, "error", err.Error())
		return goretry.RetryableError(err)
	})

	return result, err
}
