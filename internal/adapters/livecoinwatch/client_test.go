package livecoinwatch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prxgr4mmer/crypto-service/internal/adapters/livecoinwatch"
	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListCoins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/coins/list", r.URL.Path)
		assert.Equal(t, "lcw-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req domain.ListOfCoinsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, domain.NewListOfCoinsRequest(2), req)

		w.Write([]byte(`[
			{"code":"BTC","rate":64000.5,"volume":100,"cap":200,"delta":{"hour":1,"day":1.01,"week":1,"month":1,"quarter":1,"year":1}},
			{"code":"ETH","rate":3000.25,"volume":50,"cap":60,"delta":{"hour":1,"day":0.99,"week":1,"month":1,"quarter":1,"year":1}}
		]`))
	}))
	defer server.Close()

	client := livecoinwatch.NewClient(livecoinwatch.WithBaseURL(server.URL))

	coins, err := client.ListCoins(context.Background(), "lcw-key", domain.NewListOfCoinsRequest(2))
	require.NoError(t, err)
	require.Len(t, coins, 2)
	assert.Equal(t, "BTC", coins[0].Code)
	assert.Equal(t, "ETH", coins[1].Code)
	assert.Equal(t, 0.99, coins[1].Delta.Day)
}

func TestClient_CoinMeta(t *testing.T) {
	t.Run("decodes metadata", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/coins/single", r.URL.Path)

			var req domain.CoinMetaRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "BTC", req.Code)
			assert.True(t, req.Meta)

			w.Write([]byte(`{"name":"Bitcoin","symbol":"₿","rank":1,"age":5000,"color":"#fa9e32",
				"png32":"p32","png64":"p64","webp32":"w32","webp64":"w64","allTimeHighUSD":73000,
				"links":{"website":"https://bitcoin.org","whitepaper":null}}`))
		}))
		defer server.Close()

		client := livecoinwatch.NewClient(livecoinwatch.WithBaseURL(server.URL))

		meta, err := client.CoinMeta(context.Background(), "k", domain.NewCoinMetaRequest("BTC"))
		require.NoError(t, err)
		assert.Equal(t, "Bitcoin", meta.Name)
		assert.Equal(t, int64(1), meta.Rank)
		assert.Equal(t, "p64", meta.Png64)
		assert.Nil(t, meta.Code)
		require.NotNil(t, meta.Links.Website)
		assert.Nil(t, meta.Links.Whitepaper)
	})

	t.Run("forbidden maps to authentication error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := livecoinwatch.NewClient(livecoinwatch.WithBaseURL(server.URL))

		_, err := client.CoinMeta(context.Background(), "bad", domain.NewCoinMetaRequest("BTC"))
		assert.ErrorIs(t, err, domain.ErrAuthentication)
	})

	t.Run("unknown coin is an invalid response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":404,"status":"Not Found","description":"Coin not found"}}`))
		}))
		defer server.Close()

		client := livecoinwatch.NewClient(livecoinwatch.WithBaseURL(server.URL))

		_, err := client.CoinMeta(context.Background(), "k", domain.NewCoinMetaRequest("NOPE"))
		assert.ErrorIs(t, err, domain.ErrInvalidResponse)
	})
}

func TestClient_CoinHistory(t *testing.T) {
	t.Run("retries rate limit honouring Retry-After", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/coins/single/history", r.URL.Path)
			if calls.Add(1) == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"name":"Bitcoin","rank":1,"history":[{"date":1617035100000,"rate":58000,"volume":1,"cap":2},{"date":1617035400000,"rate":58100,"volume":3,"cap":4}]}`))
		}))
		defer server.Close()

		client := livecoinwatch.NewClient(
			livecoinwatch.WithBaseURL(server.URL),
			livecoinwatch.WithRetry(2, 5*time.Millisecond),
		)

		meta, err := client.CoinHistory(context.Background(), "k", domain.CoinHistoryRequest{
			Currency: "USD", Code: "BTC", Start: 1617035100000, End: 1617035400000,
		})
		require.NoError(t, err)
		require.Len(t, meta.History, 2)
		assert.Equal(t, int64(1617035100000), meta.History[0].Date)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("persistent rate limit surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := livecoinwatch.NewClient(
			livecoinwatch.WithBaseURL(server.URL),
			livecoinwatch.WithRetry(1, 5*time.Millisecond),
		)

		_, err := client.CoinHistory(context.Background(), "k", domain.CoinHistoryRequest{
			Currency: "USD", Code: "BTC", Start: 1, End: 2,
		})
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})
}
