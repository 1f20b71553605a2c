package orchestrator

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// newBackoffPolicy returns the inter-attempt delay policy: 2s, 4s, 8s,
// capped at 10s for higher attempt counts. Jitter is disabled so the delay
// sequence is deterministic.
func newBackoffPolicy() backoff.BackOff {
	p := backoff.NewExponentialBackOff()
	p.InitialInterval = 2 * time.Second
	p.Multiplier = 2.0
	p.MaxInterval = 10 * time.Second
	p.RandomizationFactor = 0
	p.MaxElapsedTime = 0
	p.Reset()
	return p
}

// retry runs op up to maxAttempts times, sleeping the policy's next delay
// between failed attempts. There is no sleep after the final attempt, so a
// caller moving on to another backend is not penalized. retryable gates
// further attempts; a non-retryable error is returned immediately.
func retry(ctx context.Context, maxAttempts int, policy backoff.BackOff, retryable func(error) bool, sleep func(context.Context, time.Duration) error, op func(attempt int) error) error {
	policy.Reset()
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = op(attempt)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}
		delay := policy.NextBackOff()
		if delay == backoff.Stop {
			break
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
