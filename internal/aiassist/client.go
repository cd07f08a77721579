// Package aiassist proxies case search and drafting requests to an external
// AI service. The proxy holds no intelligence of its own; it forwards the
// request with a timeout and a circuit breaker and returns the answer as-is.
package aiassist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

var ErrUnavailable = errors.New("ai assist service unavailable")

// Config configures the AI assist client.
type Config struct {
	BaseURL          string
	APIKey           string
	RequestTimeout   time.Duration
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

// SearchResult is one case search hit returned by the AI service.
type SearchResult struct {
	CaseID  string  `json:"case_id"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Client proxies AI search and draft calls.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[json.RawMessage]
	logger  *slog.Logger
}

// NewClient creates an AI assist client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}

	settings := gobreaker.Settings{
		Name:    "aiassist",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"client", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		breaker: gobreaker.NewCircuitBreaker[json.RawMessage](settings),
		logger:  logger,
	}
}

// Search runs a natural-language case search.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	raw, err := c.post(ctx, "/v1/search", map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	var out struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Draft asks the AI service for a document draft.
func (c *Client) Draft(ctx context.Context, documentType, instructions string) (string, error) {
	raw, err := c.post(ctx, "/v1/draft", map[string]string{
		"document_type": documentType,
		"instructions":  instructions,
	})
	if err != nil {
		return "", err
	}

	var out struct {
		Draft string `json:"draft"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	return out.Draft, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	raw, err := c.breaker.Execute(func() (json.RawMessage, error) {
		return c.doPost(ctx, path, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrUnavailable
		}
		return nil, err
	}
	return raw, nil
}

func (c *Client) doPost(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ai assist returned status %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
