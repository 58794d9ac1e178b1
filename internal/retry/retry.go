package retry

import (
	"context"
	"time"
)

// Policy describes a bounded retry loop: how many attempts to make, how long
// to wait between them, and which errors are worth another attempt. Attempts
// are strictly sequential.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	IsRetryable func(err error) bool
	Sleep       func(d time.Duration) // nil means time.Sleep
}

// Do runs op until it succeeds, fails permanently, or the attempt budget is
// spent. The last error is returned after exhaustion.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if p.IsRetryable != nil && !p.IsRetryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}
		if p.Backoff != nil {
			sleep(p.Backoff(attempt))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

// ExponentialBackoff waits 2^attempt seconds: 2s after the first failed
// attempt, 4s after the second.
func ExponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}
