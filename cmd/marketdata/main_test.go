package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
)

func TestRun_Orderbook(t *testing.T) {
	t.Chdir(t.TempDir())

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/depth", r.URL.Path)
		assert.Equal(t, "ETHBTC", r.URL.Query().Get("symbol"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lastUpdateId":42,"bids":[["0.05","3"]],"asks":[["0.051","1"]]}`))
	}))
	defer upstream.Close()

	t.Setenv("BINANCE_BASE_URL", upstream.URL)
	t.Setenv("BINANCE_MAX_RETRIES", "0")
	t.Setenv("CREDENTIALS_POLICY", "stateless")

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"orderbook", "-symbol", "ethbtc", "-limit", "5"}, &stdout, io.Discard)
	require.NoError(t, err)

	var book domain.OrderBook
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &book))
	assert.Equal(t, uint64(42), book.LastUpdateID)
	assert.Equal(t, [][]string{{"0.05", "3"}}, book.Bids)
}

func TestRun_PerCallUsesEnvironmentKeys(t *testing.T) {
	t.Chdir(t.TempDir())

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/symbols", r.URL.Path)
		assert.Equal(t, "cli-key", r.Header.Get("X-CoinAPI-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"symbol_id":"BITSTAMP_SPOT_BTC_USD"}]`))
	}))
	defer upstream.Close()

	t.Setenv("COINAPI_BASE_URL", upstream.URL)
	t.Setenv("CREDENTIALS_POLICY", "per_call")
	t.Setenv("COINAPI_API_KEY", "cli-key")

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"symbols"}, &stdout, io.Discard)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "BITSTAMP_SPOT_BTC_USD")
	assert.NotContains(t, stdout.String(), "cli-key")
}

func TestRun_Stocks(t *testing.T) {
	t.Chdir(t.TempDir())

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "TOP_GAINERS_LOSERS", r.URL.Query().Get("function"))
		assert.Equal(t, "av-key", r.URL.Query().Get("apikey"))
		w.Write([]byte(`{"metadata":"movers","last_updated":"2026-10-16","top_gainers":[{"ticker":"ABCD","price":"1.23","change_amount":"0.5","change_percentage":"68%","volume":"10"}],"top_losers":[],"most_actively_traded":[]}`))
	}))
	defer upstream.Close()

	t.Setenv("ALPHAVANTAGE_BASE_URL", upstream.URL)
	t.Setenv("ALPHA_VANTAGE_KEY", "av-key")
	t.Setenv("CREDENTIALS_POLICY", "stateless")

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"stocks"}, &stdout, io.Discard)
	require.NoError(t, err)

	var movers domain.TopMovers
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &movers))
	require.Len(t, movers.TopGainers, 1)
	assert.Equal(t, "ABCD", movers.TopGainers[0].Ticker)
	assert.NotContains(t, stdout.String(), "av-key")
}

func TestRun_Usage(t *testing.T) {
	t.Chdir(t.TempDir())

	err := run(context.Background(), nil, io.Discard, io.Discard)
	assert.ErrorIs(t, err, errUsage)

	err = run(context.Background(), []string{"nope"}, io.Discard, io.Discard)
	assert.ErrorIs(t, err, errUsage)

	err = run(context.Background(), []string{"coins", "list", "-offset", "300"}, io.Discard, io.Discard)
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}
