package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brandforge/api/internal/config"
)

// ChatClient talks to an OpenAI-compatible chat-completions API. Both the
// OpenAI and Perplexity providers are instances of this client with
// different base URLs and models.
type ChatClient struct {
	httpClient  *http.Client
	name        string
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

// ChatMessage represents a message in the chat completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest represents the request body for chat completion
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatCompletionResponse represents the response from chat completion
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// NewChatClient creates a client for one OpenAI-compatible provider. Provider
// calls are long-latency; the HTTP client bounds each to 60s.
func NewChatClient(name string, cfg *config.ProviderConfig) *ChatClient {
	return &ChatClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		name:        name,
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Name returns the provider name used in logs and source labels.
func (c *ChatClient) Name() string { return c.name }

// IsConfigured returns true if the client has valid configuration
func (c *ChatClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Complete sends a chat completion request and returns the raw text content.
func (c *ChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := ChatCompletionRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: c.name, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: c.name, Message: "failed to read response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Provider: c.name, Status: resp.StatusCode, Message: truncate(string(respBody), 500)}
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", &ProviderError{Provider: c.name, Message: "failed to unmarshal response: " + err.Error()}
	}

	if len(chatResp.Choices) == 0 {
		return "", &ProviderError{Provider: c.name, Message: "no choices in response"}
	}

	return chatResp.Choices[0].Message.Content, nil
}

// CompleteJSON sends a chat completion request and parses the content into
// out, tolerating fenced or prose-wrapped JSON.
func (c *ChatClient) CompleteJSON(ctx context.Context, system, user string, out interface{}) error {
	content, err := c.Complete(ctx, system, user)
	if err != nil {
		return err
	}
	return decodeTolerant(c.name, content, out)
}
