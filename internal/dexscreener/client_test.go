package dexscreener

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingmyco/mycobot/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.DexConfig{
		BaseURL:           srv.URL,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 100,
		Burst:             10,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTokenInfoPicksDeepestLiquidity(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/tokens/MycoAddr111", r.URL.Path)
		_, _ = w.Write([]byte(`{"pairs":[
            {"chainId":"solana","url":"https://dexscreener.com/solana/a","baseToken":{"address":"MycoAddr111","name":"King Myco","symbol":"MYCO"},"priceUsd":"0.0021","priceChange":{"h24":-3.5},"volume":{"h24":1000},"liquidity":{"usd":5000},"marketCap":210000},
            {"chainId":"solana","url":"https://dexscreener.com/solana/b","baseToken":{"address":"MycoAddr111","name":"King Myco","symbol":"MYCO"},"priceUsd":"0.0022","priceChange":{"h24":-3.1},"volume":{"h24":9000},"liquidity":{"usd":80000},"marketCap":220000}
        ]}`))
	})

	snap, err := c.TokenInfo(context.Background(), "MycoAddr111")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "MYCO", snap.Symbol)
	assert.InDelta(t, 0.0022, snap.PriceUsd, 1e-9)
	assert.InDelta(t, 80000, snap.LiquidityUsd, 1e-9)
	assert.Equal(t, "https://dexscreener.com/solana/b", snap.URL)
}

func TestTokenInfoUnknownAddressReturnsNil(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"pairs":[]}`))
	})

	snap, err := c.TokenInfo(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestTokenInfoServerError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	})

	_, err := c.TokenInfo(context.Background(), "addr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestTrendingSolanaFiltersAndSorts(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/search", r.URL.Path)
		_, _ = w.Write([]byte(`{"pairs":[
            {"chainId":"ethereum","baseToken":{"address":"e1","name":"Eth Thing","symbol":"ETHX"},"priceUsd":"1.0","volume":{"h24":999999}},
            {"chainId":"solana","baseToken":{"address":"s1","name":"Low","symbol":"LOW"},"priceUsd":"0.5","volume":{"h24":100}},
            {"chainId":"solana","baseToken":{"address":"s2","name":"High","symbol":"HIGH"},"priceUsd":"2.5","volume":{"h24":5000}},
            {"chainId":"solana","baseToken":{"address":"s3","name":"Mid","symbol":"MID"},"priceUsd":"1.5","volume":{"h24":800}}
        ]}`))
	})

	trending, err := c.TrendingSolana(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, "HIGH", trending[0].Symbol)
	assert.Equal(t, "MID", trending[1].Symbol)
}
