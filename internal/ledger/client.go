package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/eddiefleurent/wheelhouse/internal/models"
)

// APIError represents a brokerage API error with status code and response body.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Body)
}

// RetryConfig bounds the fetch retry loop.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig matches the broker-side rate limits we have seen in
// practice: three retries with doubling backoff capped at 30s.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:     3,
	InitialBackoff: 1 * time.Second,
	MaxBackoff:     30 * time.Second,
}

// Client fetches the account trade history from a brokerage REST API. Calls
// go through a circuit breaker so a flapping broker endpoint fails fast
// instead of stalling every analysis refresh.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	accountID  string
	breaker    *gobreaker.CircuitBreaker
	logger     *log.Logger
	retry      RetryConfig
}

// NewClient creates a history API client with default breaker and retry
// settings. baseURL should include the API version prefix, e.g.
// "https://api.tradier.com/v1".
func NewClient(baseURL, apiKey, accountID string, logger *log.Logger) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		accountID:  accountID,
		logger:     logger,
		retry:      DefaultRetryConfig,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "LedgerAPI",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("Circuit breaker %s state changed from %s to %s", name, from, to)
		},
	})
	return c
}

// WithHTTPClient swaps the underlying HTTP client (used by tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithRetryConfig overrides the retry policy.
func (c *Client) WithRetryConfig(rc RetryConfig) *Client {
	c.retry = rc
	return c
}

// Trades fetches, normalizes and chronologically sorts the account's full
// trade history. Transient failures (5xx, 429, network errors) are retried
// with bounded backoff; 4xx errors and an open breaker fail immediately.
func (c *Client) Trades(ctx context.Context) ([]models.Trade, error) {
	var lastErr error
	backoff := c.retry.InitialBackoff

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Printf("Ledger fetch retry %d/%d after %v: %v",
				attempt, c.retry.MaxRetries, backoff, lastErr)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("ledger fetch canceled: %w", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.retry.MaxBackoff {
				backoff = c.retry.MaxBackoff
			}
		}

		res, err := c.breaker.Execute(func() (interface{}, error) {
			return c.fetchTrades(ctx)
		})
		if err == nil {
			trades, ok := res.([]models.Trade)
			if !ok {
				return nil, errors.New("circuit breaker: type assertion failed")
			}
			return trades, nil
		}

		lastErr = err
		if !isTransient(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("ledger fetch failed after %d retries: %w", c.retry.MaxRetries, lastErr)
}

func (c *Client) fetchTrades(ctx context.Context) ([]models.Trade, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/trades", c.baseURL, c.accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", "Bearer "+c.apiKey)
	req.Header.Add("Accept", "application/json")
	req.Header.Add("User-Agent", "wheelhouse/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Printf("Failed to close response body: %v", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, rerr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if rerr != nil {
			return nil, &APIError{Status: resp.StatusCode, Body: "failed to read error body"}
		}
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		Trades []models.Trade `json:"trades"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding trade history: %w", err)
	}

	for i := range payload.Trades {
		Normalize(&payload.Trades[i])
	}
	SortChronological(payload.Trades)
	return payload.Trades, nil
}

// isTransient reports whether the fetch is worth retrying. Breaker-open
// errors are not: retrying into an open circuit only burns the backoff
// budget.
func isTransient(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 || apiErr.Status == http.StatusTooManyRequests
	}
	// Network-level errors are transient by default.
	return true
}

// Ensure Client implements Source at compile time.
var _ Source = (*Client)(nil)
