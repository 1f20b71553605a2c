package orchestrator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/revu-ai/revu/internal/backends"
)

// timeoutError marks an attempt whose timer fired before the backend call
// completed. The underlying call is not aborted; its eventual outcome is
// dropped.
type timeoutError struct {
	backend string
	after   time.Duration
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("%s: attempt timed out after %s", e.backend, e.after)
}

// IsTimeout checks if an error came from an attempt timer firing.
func IsTimeout(err error) bool {
	var te *timeoutError
	return errors.As(err, &te)
}

// AttemptRecord is one backend's final outcome within an orchestrated call.
type AttemptRecord struct {
	Backend string
	Err     error // terminal failure after retries; nil when skipped
	Skipped bool  // backend never attempted: no credential
}

// ExhaustedError reports that every eligible backend failed. It carries the
// final failure per attempted backend, so outages remain debuggable, and
// names backends skipped for missing credentials.
type ExhaustedError struct {
	Records    []AttemptRecord
	AutoSwitch bool
}

func (e *ExhaustedError) Error() string {
	var attempted, skipped []string
	for _, rec := range e.Records {
		if rec.Skipped {
			skipped = append(skipped, rec.Backend)
			continue
		}
		attempted = append(attempted, fmt.Sprintf("%s: %v", rec.Backend, rec.Err))
	}

	var b strings.Builder
	b.WriteString("all backends exhausted")
	if len(attempted) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(attempted, "; "))
	}
	if len(skipped) > 0 {
		fmt.Fprintf(&b, " (skipped, not configured: %s)", strings.Join(skipped, ", "))
	}
	if !e.AutoSwitch {
		b.WriteString("; failover is disabled, set AI_AUTO_SWITCH=true to try alternate backends")
	} else if len(skipped) > 0 {
		b.WriteString("; set the missing API key variables to make more backends eligible")
	}
	return b.String()
}

// AuthOnly reports whether every backend that was actually attempted failed
// authentication. Skipped backends do not count.
func (e *ExhaustedError) AuthOnly() bool {
	attempted := false
	for _, rec := range e.Records {
		if rec.Skipped {
			continue
		}
		attempted = true
		if !backends.IsAuthError(rec.Err) {
			return false
		}
	}
	return attempted
}

// Attempted returns the names of backends that were actually invoked, in
// priority order.
func (e *ExhaustedError) Attempted() []string {
	var names []string
	for _, rec := range e.Records {
		if !rec.Skipped {
			names = append(names, rec.Backend)
		}
	}
	return names
}
