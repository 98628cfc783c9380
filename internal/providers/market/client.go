// Package market fetches pool reserves and token market data. Pool data
// comes from a DEX explorer API; token price and supply from a market-data
// provider. Both calls take the chain explicitly.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"token-holder-lab/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1 * time.Second
	DefaultMaxDelay   = 10 * time.Second
)

// Client fetches pool and token market data over HTTP.
type Client struct {
	explorerURL string
	marketURL   string
	apiKey      string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// WithAPIKey sets the market-data provider API key.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.client = client }
}

// NewClient creates a market-data client. explorerURL serves pool payloads,
// marketURL serves token price payloads.
func NewClient(explorerURL, marketURL string, opts ...Option) *Client {
	c := &Client{
		explorerURL: explorerURL,
		marketURL:   marketURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPool retrieves a pool snapshot for the given chain and pool address.
func (c *Client) FetchPool(ctx context.Context, chain domain.Chain, poolAddress string) (*PoolData, error) {
	if !chain.IsValid() {
		return nil, fmt.Errorf("unknown chain %q", chain)
	}
	if err := chain.ValidateAddress(poolAddress); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/cached/pools/v3/%s/%s", c.explorerURL, chain, poolAddress)

	var payload poolResponse
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fetch pool %s: %w", poolAddress, err)
	}

	reserve0, err := strconv.ParseFloat(payload.TVLToken0, 64)
	if err != nil {
		return nil, fmt.Errorf("parse tvlToken0 %q: %w", payload.TVLToken0, err)
	}
	reserve1, err := strconv.ParseFloat(payload.TVLToken1, 64)
	if err != nil {
		return nil, fmt.Errorf("parse tvlToken1 %q: %w", payload.TVLToken1, err)
	}
	tvlUSD, err := strconv.ParseFloat(payload.TVLUSD, 64)
	if err != nil {
		return nil, fmt.Errorf("parse tvlUSD %q: %w", payload.TVLUSD, err)
	}

	return &PoolData{
		PoolAddress:  poolAddress,
		Token0ID:     payload.Token0.ID,
		Token1ID:     payload.Token1.ID,
		Token0Symbol: payload.Token0.Symbol,
		Token1Symbol: payload.Token1.Symbol,
		Reserve0:     reserve0,
		Reserve1:     reserve1,
		TVLUSD:       tvlUSD,
		FeeRate:      float64(payload.FeeTier) / 1e6,
	}, nil
}

// PoolState maps a pool snapshot onto the simulator's domain type with
// token0 as base and token1 as quote.
func (p *PoolData) PoolState() domain.PoolState {
	return domain.PoolState{
		PoolAddress:  p.PoolAddress,
		BaseSymbol:   p.Token0Symbol,
		QuoteSymbol:  p.Token1Symbol,
		ReserveBase:  p.Reserve0,
		ReserveQuote: p.Reserve1,
		FeeRate:      p.FeeRate,
	}
}

// DirectionFor maps an input token contract address onto a swap direction.
// Matching is checksum-insensitive.
func (p *PoolData) DirectionFor(tokenIn string) (domain.SwapDirection, error) {
	switch domain.NormalizeAddress(tokenIn) {
	case domain.NormalizeAddress(p.Token0ID):
		return domain.SwapBaseIn, nil
	case domain.NormalizeAddress(p.Token1ID):
		return domain.SwapQuoteIn, nil
	default:
		return "", fmt.Errorf("token %s is not part of pool %s/%s", tokenIn, p.Token0Symbol, p.Token1Symbol)
	}
}

// FetchToken retrieves token price, market cap and derived supply.
func (c *Client) FetchToken(ctx context.Context, chain domain.Chain, tokenAddress string) (*TokenData, error) {
	if !chain.IsValid() {
		return nil, fmt.Errorf("unknown chain %q", chain)
	}
	if err := chain.ValidateAddress(tokenAddress); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/simple/token_price/%s?%s", c.marketURL, chain,
		url.Values{
			"contract_addresses": {tokenAddress},
			"vs_currencies":      {"usd"},
			"include_market_cap": {"true"},
		}.Encode())

	var payload tokenPriceResponse
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fetch token %s: %w", tokenAddress, err)
	}

	entry, ok := payload[domain.NormalizeAddress(tokenAddress)]
	if !ok {
		// Some providers echo the address as given.
		entry, ok = payload[tokenAddress]
	}
	if !ok {
		return nil, fmt.Errorf("token %s not present in market data response", tokenAddress)
	}

	data := &TokenData{
		Address:   tokenAddress,
		PriceUSD:  entry.USD,
		MarketCap: entry.USDMarketCap,
	}
	if entry.USD > 0 && entry.USDMarketCap > 0 {
		data.Supply = entry.USDMarketCap / entry.USD
	}
	return data, nil
}

// get performs a GET with retries and exponential backoff.
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
			delay *= 2
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
			req.Header.Set("x-cg-api-key", c.apiKey)
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
