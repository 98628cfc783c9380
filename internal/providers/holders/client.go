// Package holders fetches labeled top-holder rows from a holder-labeling
// provider. The package owns only data acquisition; classification and
// analysis stay in the pure engines.
package holders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"token-holder-lab/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// Client fetches top holders over HTTP with bounded retries.
type Client struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithAPIKey sets the provider API key header value.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a holder-labeling provider client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTopHolders retrieves the labeled top holders for a token on a chain.
// Buckets in the provider payload are flattened in deterministic (sorted key)
// order; row order within a bucket is preserved.
func (c *Client) FetchTopHolders(ctx context.Context, chain domain.Chain, token string) ([]domain.HolderRecord, error) {
	if !chain.IsValid() {
		return nil, fmt.Errorf("unknown chain %q", chain)
	}
	if token == "" {
		return nil, fmt.Errorf("token is required")
	}

	endpoint := fmt.Sprintf("%s/token/holders/%s?%s", c.baseURL, url.PathEscape(token),
		url.Values{"chain": {chain.String()}, "groupByEntity": {"false"}}.Encode())

	var payload topHoldersResponse
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fetch top holders for %s: %w", token, err)
	}

	buckets := make([]string, 0, len(payload.AddressTopHolders))
	for key := range payload.AddressTopHolders {
		buckets = append(buckets, key)
	}
	sort.Strings(buckets)

	var records []domain.HolderRecord
	for _, key := range buckets {
		for _, row := range payload.AddressTopHolders[key] {
			records = append(records, toRecord(row))
		}
	}
	return records, nil
}

func toRecord(row holderRow) domain.HolderRecord {
	rec := domain.HolderRecord{
		Address: row.Address.Address,
		Balance: row.Balance,
	}
	if e := row.Address.Entity; e != nil {
		if e.Name != "" {
			name := e.Name
			rec.EntityName = &name
		}
		if e.Type != "" {
			typ := e.Type
			rec.EntityType = &typ
		}
	}
	if l := row.Address.Label; l != nil && l.Name != "" {
		label := l.Name
		rec.EntityLabel = &label
	}
	return rec
}

// get performs a GET with retries and exponential backoff. Non-2xx responses
// and transport errors are retried; malformed payloads are not.
func (c *Client) get(ctx context.Context, endpoint string, result any) error {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
			continue
		}

		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
