// Package dexscreener implements a small client for the public DexScreener
// API, used for token price lookups and trending pair queries.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/kingmyco/mycobot/internal/config"
)

// TokenSnapshot is a flattened view of the most liquid trading pair for a
// token, as reported by DexScreener.
type TokenSnapshot struct {
	ChainID        string  `json:"chainId"`
	Address        string  `json:"address"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	PriceUsd       float64 `json:"priceUsd"`
	PriceChange24h float64 `json:"priceChange24h"`
	Volume24h      float64 `json:"volume24h"`
	LiquidityUsd   float64 `json:"liquidityUsd"`
	MarketCapUsd   float64 `json:"marketCapUsd"`
	URL            string  `json:"url"`
}

// Client queries DexScreener with client-side rate limiting.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

// NewClient creates a DexScreener client from configuration.
func NewClient(cfg config.DexConfig, log *slog.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		log:        log.With("component", "dexscreener"),
	}
}

// pair mirrors the subset of the DexScreener pair payload we consume.
// Prices arrive as decimal strings.
type pair struct {
	ChainID   string `json:"chainId"`
	URL       string `json:"url"`
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUsd    string `json:"priceUsd"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	Liquidity struct {
		Usd float64 `json:"usd"`
	} `json:"liquidity"`
	MarketCap float64 `json:"marketCap"`
}

type pairsResponse struct {
	Pairs []pair `json:"pairs"`
}

// TokenInfo looks up a token by contract address. It returns nil with no
// error when DexScreener knows no pairs for the address.
func (c *Client) TokenInfo(ctx context.Context, address string) (*TokenSnapshot, error) {
	var resp pairsResponse
	if err := c.getJSON(ctx, "/latest/dex/tokens/"+url.PathEscape(address), &resp); err != nil {
		return nil, err
	}
	if len(resp.Pairs) == 0 {
		return nil, nil
	}

	// Pick the pair with the deepest liquidity as the canonical quote.
	best := resp.Pairs[0]
	for _, p := range resp.Pairs[1:] {
		if p.Liquidity.Usd > best.Liquidity.Usd {
			best = p
		}
	}
	snap := snapshotFromPair(best)
	return &snap, nil
}

// TrendingSolana returns Solana pairs ranked by 24h volume, capped at limit.
func (c *Client) TrendingSolana(ctx context.Context, limit int) ([]TokenSnapshot, error) {
	var resp pairsResponse
	if err := c.getJSON(ctx, "/latest/dex/search?q=solana", &resp); err != nil {
		return nil, err
	}

	var out []TokenSnapshot
	for _, p := range resp.Pairs {
		if p.ChainID != "solana" {
			continue
		}
		out = append(out, snapshotFromPair(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Volume24h > out[j].Volume24h })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build dexscreener request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dexscreener request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Warn("Error closing dexscreener response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("dexscreener returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode dexscreener response: %w", err)
	}
	return nil
}

func snapshotFromPair(p pair) TokenSnapshot {
	price, err := strconv.ParseFloat(p.PriceUsd, 64)
	if err != nil {
		price = 0
	}
	return TokenSnapshot{
		ChainID:        p.ChainID,
		Address:        p.BaseToken.Address,
		Name:           p.BaseToken.Name,
		Symbol:         p.BaseToken.Symbol,
		PriceUsd:       price,
		PriceChange24h: p.PriceChange.H24,
		Volume24h:      p.Volume.H24,
		LiquidityUsd:   p.Liquidity.Usd,
		MarketCapUsd:   p.MarketCap,
		URL:            p.URL,
	}
}
