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
	"github.com/brandforge/api/internal/model"
)

// DocumentRenderer turns a structured slide deck into an opaque binary
// document. The rendering service is a black box to the pipeline.
type DocumentRenderer interface {
	Render(ctx context.Context, deck *model.SlideDeck) ([]byte, error)
	IsConfigured() bool
}

// RendererClient implements DocumentRenderer for the rendering sidecar.
type RendererClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewRendererClient creates a new document renderer client
func NewRendererClient(cfg *config.RendererConfig) *RendererClient {
	return &RendererClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		baseURL: cfg.ServiceURL,
	}
}

// Render posts the deck to the rendering service and returns the document
// bytes.
func (c *RendererClient) Render(ctx context.Context, deck *model.SlideDeck) ([]byte, error) {
	bodyBytes, err := json.Marshal(deck)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deck: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("renderer request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read renderer response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("renderer error (status %d): %s", resp.StatusCode, truncate(string(data), 200))
	}

	return data, nil
}

// IsConfigured returns true if a rendering service URL is set
func (c *RendererClient) IsConfigured() bool {
	return c.baseURL != ""
}
