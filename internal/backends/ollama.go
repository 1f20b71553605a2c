package backends

import (
	"context"
	"net/http"
	"strings"

	"github.com/revu-ai/revu/internal/config"
)

// Ollama calls an Ollama or LM Studio server through its OpenAI-compatible
// chat completions endpoint. Its "credential" is OLLAMA_HOST: the backend
// participates in failover only when a host is explicitly configured.
type Ollama struct {
	cfg    *config.Store
	client *http.Client
}

// NewOllama creates the ollama backend.
func NewOllama(cfg *config.Store) *Ollama {
	return &Ollama{
		cfg:    cfg,
		client: httpClient,
	}
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Configured() bool {
	return credential(o.cfg, o.Name()) != ""
}

func (o *Ollama) Invoke(ctx context.Context, prompt string) (string, error) {
	return invokeOpenAIWire(ctx, o.client, o.endpoint(), "", model(o.cfg, o.Name()), prompt)
}

// endpoint normalizes OLLAMA_HOST into a chat completions URL, tolerating
// values with or without the /v1 suffix.
func (o *Ollama) endpoint() string {
	host := credential(o.cfg, o.Name())
	host = strings.TrimRight(host, "/")
	host = strings.TrimSuffix(host, "/v1/chat/completions")
	host = strings.TrimSuffix(host, "/v1")
	return host + "/v1/chat/completions"
}
