package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"
)

func noSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		if delays != nil {
			*delays = append(*delays, d)
		}
		return nil
	}
}

func retryAll(error) bool { return true }

func TestRetrySucceedsFirstTry(t *testing.T) {
	var delays []time.Duration
	calls := 0
	err := retry(context.Background(), 3, newBackoffPolicy(), retryAll, noSleep(&delays), func(attempt int) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(delays) != 0 {
		t.Errorf("delays = %v, want none", delays)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	var delays []time.Duration
	calls := 0
	boom := errors.New("boom")
	err := retry(context.Background(), 3, newBackoffPolicy(), retryAll, noSleep(&delays), func(attempt int) error {
		calls++
		if attempt != calls {
			t.Errorf("attempt = %d, want %d", attempt, calls)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want final attempt error", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	// No wait after the final attempt.
	if len(delays) != 2 {
		t.Errorf("delays = %v, want 2 waits", delays)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	fatal := errors.New("bad credentials")
	calls := 0
	err := retry(context.Background(), 5, newBackoffPolicy(), func(err error) bool {
		return !errors.Is(err, fatal)
	}, noSleep(nil), func(int) error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Errorf("err = %v, want the non-retryable error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryHonorsContextDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retry(ctx, 3, newBackoffPolicy(), retryAll, sleepCtx, func(int) error {
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBackoffPolicyCap(t *testing.T) {
	p := newBackoffPolicy()
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second}
	for i, w := range want {
		if got := p.NextBackOff(); got != w {
			t.Errorf("NextBackOff()[%d] = %s, want %s", i, got, w)
		}
	}
}
