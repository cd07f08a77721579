// Package docgen calls the external document-generation service that renders
// closure-report artifacts. The call sits behind a circuit breaker; when the
// breaker is open the caller fails fast instead of waiting on a sick
// downstream.
package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

var ErrUnavailable = errors.New("document generation service unavailable")

// Config configures the docgen client.
type Config struct {
	BaseURL          string
	RequestTimeout   time.Duration
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

// Client generates closure-report artifacts over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
}

// NewClient creates a docgen client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}

	settings := gobreaker.Settings{
		Name:    "docgen",
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
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		breaker: gobreaker.NewCircuitBreaker[string](settings),
		logger:  logger,
	}
}

type generateRequest struct {
	CaseID   string `json:"case_id"`
	Template string `json:"template"`
}

type generateResponse struct {
	URL string `json:"url"`
}

// GenerateClosureReport renders the closure artifact for a case and returns
// its URL.
func (c *Client) GenerateClosureReport(ctx context.Context, caseID uuid.UUID) (string, error) {
	url, err := c.breaker.Execute(func() (string, error) {
		return c.generate(ctx, caseID, "closure_report")
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrUnavailable
		}
		return "", err
	}
	return url, nil
}

func (c *Client) generate(ctx context.Context, caseID uuid.UUID, template string) (string, error) {
	body, err := json.Marshal(generateRequest{CaseID: caseID.String(), Template: template})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/documents", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("document generation returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", errors.New("document generation returned no url")
	}
	return out.URL, nil
}
