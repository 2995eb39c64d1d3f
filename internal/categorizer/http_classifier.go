package categorizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultAIEndpoint is the classifier endpoint used when none is configured.
const DefaultAIEndpoint = "https://api.groq.com/v1/classify"

const maxClassifierResponse = 1 << 20

// HTTPClassifier implements AIClient against a bearer-authenticated JSON
// endpoint: POST {"text": ...} -> {"category": ..., "confidence": ...}.
type HTTPClassifier struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewHTTPClassifier creates a classifier for endpoint. timeout bounds the
// whole HTTP exchange.
func NewHTTPClassifier(endpoint, apiKey string, timeout time.Duration) (*HTTPClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("classifier API key is required")
	}
	if endpoint == "" {
		endpoint = DefaultAIEndpoint
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClassifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Classify sends one classification request.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (AIResponse, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return AIResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return AIResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AIResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxClassifierResponse))
	if err != nil {
		return AIResponse{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return AIResponse{}, fmt.Errorf("classifier error (status %d): %s", resp.StatusCode, truncate(string(data), 200))
	}
	return parseAIResponse(string(data))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
