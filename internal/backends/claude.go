package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/revu-ai/revu/internal/config"
)

const (
	defaultClaudeURL = "https://api.anthropic.com/v1/messages"
	claudeAPIVersion = "2023-06-01"
)

// Claude calls Anthropic's messages API.
type Claude struct {
	cfg     *config.Store
	baseURL string
	client  *http.Client
}

// NewClaude creates the claude backend.
func NewClaude(cfg *config.Store) *Claude {
	return &Claude{
		cfg:     cfg,
		baseURL: defaultClaudeURL,
		client:  httpClient,
	}
}

func (c *Claude) Name() string { return "claude" }

func (c *Claude) Configured() bool {
	return credential(c.cfg, c.Name()) != ""
}

func (c *Claude) Invoke(ctx context.Context, prompt string) (string, error) {
	body := claudeRequest{
		Model:     model(c.cfg, c.Name()),
		MaxTokens: 8192,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", credential(c.cfg, c.Name()))
	httpReq.Header.Set("anthropic-version", claudeAPIVersion)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if err := statusError(httpResp.StatusCode, respBody); err != nil {
		return "", err
	}

	var result claudeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	var content string
	for _, block := range result.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	if content == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return content, nil
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeBlock `json:"content"`
}

type claudeBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
