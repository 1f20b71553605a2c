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

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI calls OpenAI's chat completions API.
type OpenAI struct {
	cfg     *config.Store
	baseURL string
	client  *http.Client
}

// NewOpenAI creates the openai backend.
func NewOpenAI(cfg *config.Store) *OpenAI {
	return &OpenAI{
		cfg:     cfg,
		baseURL: defaultOpenAIURL,
		client:  httpClient,
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Configured() bool {
	return credential(o.cfg, o.Name()) != ""
}

func (o *OpenAI) Invoke(ctx context.Context, prompt string) (string, error) {
	return invokeOpenAIWire(ctx, o.client, o.baseURL, credential(o.cfg, o.Name()), model(o.cfg, o.Name()), prompt)
}

// invokeOpenAIWire performs one chat completion call in the OpenAI wire
// format. Shared with the ollama backend, which speaks the same protocol.
func invokeOpenAIWire(ctx context.Context, client *http.Client, url, bearer, modelName, prompt string) (string, error) {
	body := openaiRequest{
		Model: modelName,
		Messages: []openaiMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: 8192,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}

	httpResp, err := client.Do(httpReq)
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

	var result openaiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	if result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty text content in API response")
	}
	return result.Choices[0].Message.Content, nil
}

type openaiRequest struct {
	Model     string          `json:"model"`
	Messages  []openaiMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}
