// Package llm is an HTTP client for a local Ollama-compatible completion
// endpoint, used by C4's optional re-rank and C6's metadata generation.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to an Ollama-compatible /api/generate endpoint.
type Client struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	httpClient *http.Client
}

// NewClient constructs a Client. timeout and maxRetries follow spec.md
// §4.6's "LLM call discipline": default 30s timeout, <=2 retries.
func NewClient(baseURL, model string, timeout time.Duration, maxRetries int) *Client {
	return &Client{
		BaseURL:    baseURL,
		Model:      model,
		Timeout:    timeout,
		MaxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type options struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// GenerationOptions carries per-call sampling parameters; zero-valued fields
// use Ollama's own defaults.
type GenerationOptions struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Generate issues a single, non-streaming completion request, retrying up to
// MaxRetries times on any failure (transport error, non-200 status, or an
// undecodable body); each attempt uses a fresh connection (spec.md §4.6). Callers needing a fresh timeout per attempt should
// pass a context without its own deadline; Generate applies Client.Timeout.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		resp, err := c.doGenerate(ctx, prompt, opts)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("llm generate failed after %d attempts: %w", c.MaxRetries+1, lastErr)
}

func (c *Client) doGenerate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	body := generateRequest{
		Model:  c.Model,
		Prompt: prompt,
		Stream: false,
		Options: options{
			Temperature: opts.Temperature,
			TopP:        opts.TopP,
			MaxTokens:   opts.MaxTokens,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := c.BaseURL + "/api/generate"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Close = true

	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: c.Timeout}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm endpoint returned status %d: %s", resp.StatusCode, string(data))
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Response, nil
}
