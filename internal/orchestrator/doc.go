// Package orchestrator invokes AI backends with bounded retries, exponential
// backoff, per-attempt timeouts, and automatic failover.
//
// For one call the priority order is the preferred backend followed by every
// other known backend, configured backends first. Each configured backend is
// attempted up to AI_MAX_RETRIES times with delays of min(2^attempt s, 10s)
// between attempts. With AI_AUTO_SWITCH=false only the preferred backend is
// tried and its exhaustion is a hard failure. The first success returns the
// generated text together with the name of the backend that produced it.
//
// Each attempt races a timer. A timed-out attempt counts as failed, but the
// in-flight HTTP call is not aborted; it may finish later with no observer.
// This is a documented limitation, accepted in exchange for strictly
// sequential, strictly ordered attempts.
//
// When every eligible backend fails, the single returned [ExhaustedError]
// lists each attempted backend's final failure and names the backends that
// were skipped for missing credentials.
package orchestrator
