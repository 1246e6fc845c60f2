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

const (
	// DefaultBaseURL targets the OpenAI API; any OpenAI-compatible endpoint works
	DefaultBaseURL = "https://api.openai.com"
	// DefaultModel is the default chat completion model
	DefaultModel = "gpt-4o-mini"
	// DefaultTimeout is the per-attempt wall clock limit
	DefaultTimeout = 30 * time.Second
	// DefaultTemperature is the fixed sampling temperature for generation
	DefaultTemperature = 0.7

	systemPrompt = "You are an expert exam paper generator."
)

// Completer is the LLM capability: one prompt in, assistant text out. Fails on
// timeout or transient error after the client's internal retry budget.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client calls an OpenAI-compatible chat completions API
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	timeout     time.Duration
	retries     int
	backoff     time.Duration
	httpClient  *http.Client
}

// Config holds configuration for the LLM client
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	// Timeout bounds each individual attempt
	Timeout time.Duration
	// Retries is the number of additional attempts after the first
	Retries int
	// Backoff is the initial delay between attempts; it doubles each retry
	Backoff time.Duration
}

// NewClient creates a new LLM client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Retries == 0 {
		config.Retries = DefaultRetries
	}
	if config.Backoff == 0 {
		config.Backoff = DefaultBackoff
	}

	return &Client{
		apiKey:      config.APIKey,
		baseURL:     config.BaseURL,
		model:       config.Model,
		temperature: config.Temperature,
		timeout:     config.Timeout,
		retries:     config.Retries,
		backoff:     config.Backoff,
		// the retry wrapper enforces the per-attempt timeout via context
		httpClient: &http.Client{},
	}
}

// chatMessage represents a message in the chat completion request
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is an OpenAI-compatible chat completion request
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// Complete sends the prompt and returns the assistant text, retrying per the
// configured policy. Callers should not retry further themselves.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return completeWithRetry(ctx, c.attempt, prompt, c.retries, c.backoff)
}

// attempt performs a single chat completion bounded by the per-attempt timeout
func (c *Client) attempt(ctx context.Context, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(attemptCtx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat completions API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from chat completions API")
	}

	return result.Choices[0].Message.Content, nil
}
