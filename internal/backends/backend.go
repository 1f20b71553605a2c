package backends

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/revu-ai/revu/internal/config"
)

// Backend is the uniform capability interface every AI service variant
// implements. The set of variants is closed; see [NewRegistry].
type Backend interface {
	// Invoke sends a fully composed prompt and returns the generated text.
	Invoke(ctx context.Context, prompt string) (string, error)
	// Configured reports whether the backend's credential is present.
	// Recomputed from configuration on every call, since credentials may
	// be written during the process's life.
	Configured() bool
	Name() string
}

// Registry holds the closed, ordered set of known backends.
type Registry struct {
	backends []Backend
}

// NewRegistry creates the registry with every known backend wired to the
// given config store for credentials and model selection.
func NewRegistry(cfg *config.Store) *Registry {
	return &Registry{
		backends: []Backend{
			NewGemini(cfg),
			NewClaude(cfg),
			NewOpenAI(cfg),
			NewOllama(cfg),
		},
	}
}

// NewRegistryWith builds a registry from explicit backends, in the given
// priority order. Used by tests and custom wiring.
func NewRegistryWith(bs ...Backend) *Registry {
	return &Registry{backends: bs}
}

// Get returns the backend with the given name.
func (r *Registry) Get(name string) (Backend, bool) {
	for _, b := range r.backends {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// All returns the backends in declaration order.
func (r *Registry) All() []Backend {
	out := make([]Backend, len(r.backends))
	copy(out, r.backends)
	return out
}

// Names returns the backend names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name()
	}
	return names
}

type rateLimitError struct{}

func (e *rateLimitError) Error() string { return "rate limited" }

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.statusCode, e.body)
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

// IsRetryable reports whether another attempt against the same backend can
// succeed. Auth errors are terminal: the credential will not fix itself
// between attempts.
func IsRetryable(err error) bool {
	return err != nil && !IsAuthError(err)
}

// httpClient is shared by all backends. Per-attempt deadlines are enforced
// by the orchestrator, not here.
var httpClient = &http.Client{}

func credential(cfg *config.Store, backend string) string {
	cred, err := cfg.Credential(backend)
	if err != nil {
		return ""
	}
	return cred
}

func model(cfg *config.Store, backend string) string {
	m, err := cfg.Model(backend)
	if err != nil {
		return ""
	}
	return m
}
