package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// EmbeddingsClient is a client for OpenAI-compatible embeddings APIs.
type EmbeddingsClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	ExpectedSize int // Expected vector size for validation
	MaxRetries   int
	client       *http.Client
	retryDelay   func(attempt int) time.Duration
}

// NewEmbeddingsClient creates a new embeddings client.
// All embeddings returned by Embed are validated against expectedSize.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize int) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		APIKey:       apiKey,
		Model:        model,
		ExpectedSize: expectedSize,
		MaxRetries:   2,
		client:       &http.Client{Timeout: 60 * time.Second},
		retryDelay:   backoff,
	}
}

// backoff doubles from 200ms and caps at 5s.
func backoff(attempt int) time.Duration {
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

// ID identifies the embedding space: vectors from clients with equal IDs are comparable.
func (c *EmbeddingsClient) ID() string {
	return fmt.Sprintf("openai:%s:%d", c.Model, c.ExpectedSize)
}

// Dimension returns the vector size every embedding is validated against.
func (c *EmbeddingsClient) Dimension() int {
	return c.ExpectedSize
}

// EmbeddingsRequest represents the request payload for embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// Embed generates one embedding per input text, in input order. Transient
// failures are retried up to MaxRetries times.
func (c *EmbeddingsClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay(attempt - 1)):
			}
		}

		vectors, err := c.embedOnce(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if !IsTransient(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *EmbeddingsClient) embedOnce(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(EmbeddingsRequest{Model: c.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var embeddingsResp EmbeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embeddingsResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddingsResp.Data))
	}

	result := make([][]float32, len(texts))
	for i, data := range embeddingsResp.Data {
		// Servers that send an index may reorder; trust it when it is in range.
		pos := i
		if data.Index >= 0 && data.Index < len(texts) && result[data.Index] == nil {
			pos = data.Index
		}
		if len(data.Embedding) != c.ExpectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", pos, len(data.Embedding), c.ExpectedSize)
		}

		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[pos] = vec
	}

	for i, vec := range result {
		if vec == nil {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}

	return result, nil
}
