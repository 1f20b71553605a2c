package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/revu-ai/revu/internal/backends"
	"github.com/revu-ai/revu/internal/config"
)

// Result is a successful orchestrated invocation. Backend names the service
// that actually produced the text, which may differ from the preferred one;
// callers must treat it as authoritative.
type Result struct {
	Text    string
	Backend string
}

// Orchestrator drives the retry and failover algorithm across the backend
// registry. Attempts within one call are strictly sequential; independent
// calls share nothing but the config store and registry.
type Orchestrator struct {
	cfg *config.Store
	reg *backends.Registry
	log *slog.Logger

	sleep           func(context.Context, time.Duration) error
	timeoutOverride time.Duration
}

// Option customizes an Orchestrator, mainly for tests.
type Option func(*Orchestrator)

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithSleep overrides the inter-attempt wait, so tests can record delays
// instead of incurring them.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(o *Orchestrator) { o.sleep = fn }
}

// WithTimeout fixes the per-attempt timeout instead of reading AI_TIMEOUT.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeoutOverride = d }
}

// New creates an Orchestrator over the given config store and registry.
func New(cfg *config.Store, reg *backends.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:   cfg,
		reg:   reg,
		log:   slog.Default(),
		sleep: sleepCtx,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Invoke sends the composed prompt to the preferred backend, retrying with
// exponential backoff, and fails over to alternate backends in priority
// order when auto-switch is enabled. The first success wins; exhaustion of
// every eligible backend returns an *ExhaustedError naming each attempted
// backend's final failure.
func (o *Orchestrator) Invoke(ctx context.Context, preferred, prompt string) (Result, error) {
	maxRetries, err := o.cfg.MaxRetries()
	if err != nil {
		return Result{}, err
	}
	autoSwitch, err := o.cfg.AutoSwitch()
	if err != nil {
		return Result{}, err
	}
	timeout, err := o.timeout()
	if err != nil {
		return Result{}, err
	}

	order := o.priorityOrder(config.NormalizeBackend(preferred), autoSwitch)

	var records []AttemptRecord
	for _, b := range order {
		if !b.Configured() {
			o.log.Debug("skipping backend", "backend", b.Name(), "reason", "not configured")
			records = append(records, AttemptRecord{Backend: b.Name(), Skipped: true})
			continue
		}

		var text string
		err := retry(ctx, maxRetries, newBackoffPolicy(), backends.IsRetryable, o.sleep, func(attempt int) error {
			out, err := o.attempt(ctx, b, prompt, timeout)
			if err != nil {
				o.log.Debug("attempt failed", "backend", b.Name(), "attempt", attempt, "error", err)
				return err
			}
			text = out
			return nil
		})
		if err == nil {
			o.log.Debug("backend succeeded", "backend", b.Name())
			return Result{Text: text, Backend: b.Name()}, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		o.log.Debug("backend exhausted", "backend", b.Name(), "error", err)
		records = append(records, AttemptRecord{Backend: b.Name(), Err: err})
	}

	return Result{}, &ExhaustedError{Records: records, AutoSwitch: autoSwitch}
}

// priorityOrder builds the backend order: the preferred backend first, then,
// when auto-switch permits failover, every other known backend with
// configured ones ahead of unconfigured ones. With auto-switch disabled the
// order is the preferred backend alone.
func (o *Orchestrator) priorityOrder(preferred string, autoSwitch bool) []backends.Backend {
	first, ok := o.reg.Get(preferred)
	if !ok {
		// preferred has been normalized to a known name already
		first = o.reg.All()[0]
	}
	order := []backends.Backend{first}
	if !autoSwitch {
		return order
	}

	var configured, unconfigured []backends.Backend
	for _, b := range o.reg.All() {
		if b.Name() == first.Name() {
			continue
		}
		if b.Configured() {
			configured = append(configured, b)
		} else {
			unconfigured = append(unconfigured, b)
		}
	}
	order = append(order, configured...)
	order = append(order, unconfigured...)
	return order
}

// attempt races one backend invocation against the per-attempt timer. When
// the timer or the caller's context wins, the in-flight call is not aborted;
// it may complete later with no observer. The result channel is buffered so
// the abandoned goroutine can still send and exit.
func (o *Orchestrator) attempt(ctx context.Context, b backends.Backend, prompt string, timeout time.Duration) (string, error) {
	type outcome struct {
		text string
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		text, err := b.Invoke(ctx, prompt)
		ch <- outcome{text: text, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case out := <-ch:
		return out.text, out.err
	case <-timer.C:
		return "", &timeoutError{backend: b.Name(), after: timeout}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (o *Orchestrator) timeout() (time.Duration, error) {
	if o.timeoutOverride > 0 {
		return o.timeoutOverride, nil
	}
	secs, err := o.cfg.TimeoutSeconds()
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}
