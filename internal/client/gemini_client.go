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

// GeminiClient talks to the Google generative-language REST API. Gemini's
// request shape differs from the OpenAI-compatible providers: no role split,
// instructions and content travel as ordered parts.
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// NewGeminiClient creates a new Gemini API client
func NewGeminiClient(cfg *config.ProviderConfig) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

// Name returns the provider name used in logs and source labels.
func (c *GeminiClient) Name() string { return "gemini" }

// IsConfigured returns true if the client has valid configuration
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Complete issues one generateContent call. System instructions are prepended
// to the prompt since Gemini carries no separate system role here.
func (c *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	prompt := user
	if system != "" {
		prompt = system + "\n\n" + user
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: "gemini", Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: "gemini", Message: "failed to read response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Provider: "gemini", Status: resp.StatusCode, Message: truncate(string(respBody), 500)}
	}

	var genResp geminiResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", &ProviderError{Provider: "gemini", Message: "failed to unmarshal response: " + err.Error()}
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{Provider: "gemini", Message: "no candidates in response"}
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// CompleteJSON issues one generateContent call and parses the text into out,
// tolerating fenced or prose-wrapped JSON.
func (c *GeminiClient) CompleteJSON(ctx context.Context, system, user string, out interface{}) error {
	content, err := c.Complete(ctx, system, user)
	if err != nil {
		return err
	}
	return decodeTolerant("gemini", content, out)
}
