package alphavantage_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prxgr4mmer/crypto-service/internal/adapters/alphavantage"
	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const topMoversBody = `{
	"metadata": "Top gainers, losers, and most actively traded US tickers",
	"last_updated": "2026-10-16 16:15:59 US/Eastern",
	"top_gainers": [
		{"ticker":"ABCD","price":"1.23","change_amount":"0.50","change_percentage":"68.49%","volume":"1000"}
	],
	"top_losers": [
		{"ticker":"WXYZ","price":"0.10","change_amount":"-0.20","change_percentage":"-66.67%","volume":"2000"},
		{"ticker":"QRST","price":"2.00","change_amount":"-1.00","change_percentage":"-33.33%","volume":"3000"}
	],
	"most_actively_traded": []
}`

func TestClient_TopMovers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "TOP_GAINERS_LOSERS", r.URL.Query().Get("function"))
		assert.Equal(t, "av-key", r.URL.Query().Get("apikey"))

		w.Write([]byte(topMoversBody))
	}))
	defer server.Close()

	client := alphavantage.NewClient(alphavantage.WithBaseURL(server.URL))

	movers, err := client.TopMovers(context.Background(), "av-key")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16 16:15:59 US/Eastern", movers.LastUpdated)
	require.Len(t, movers.TopGainers, 1)
	assert.Equal(t, domain.StockMover{
		Ticker: "ABCD", Price: "1.23", ChangeAmount: "0.50", ChangePercentage: "68.49%", Volume: "1000",
	}, movers.TopGainers[0])
	require.Len(t, movers.TopLosers, 2)
	assert.Equal(t, "QRST", movers.TopLosers[1].Ticker)
	assert.Empty(t, movers.MostActivelyTraded)
}

func TestClient_TopMovers_Notices(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{
			"daily quota",
			`{"Information":"Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`,
			domain.ErrRateLimited,
		},
		{
			"per minute quota",
			`{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency rate limit is 5 calls per minute."}`,
			domain.ErrRateLimited,
		},
		{
			"bad key",
			`{"Information":"The **demo** API key is for demo purposes only. Please claim your free API key and use it as the apikey parameter."}`,
			domain.ErrAuthentication,
		},
		{
			"error message",
			`{"Error Message":"Invalid API call."}`,
			domain.ErrInvalidResponse,
		},
		{
			"unrelated object",
			`{"status":"ok"}`,
			domain.ErrInvalidResponse,
		},
		{
			"null body",
			`null`,
			domain.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := alphavantage.NewClient(alphavantage.WithBaseURL(server.URL), alphavantage.WithRetry(0, 0))

			movers, err := client.TopMovers(context.Background(), "secret-key")
			assert.Nil(t, movers)
			assert.ErrorIs(t, err, tt.want)
			assert.NotContains(t, err.Error(), "secret-key")
		})
	}
}

func TestClient_TopMovers_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := alphavantage.NewClient(alphavantage.WithBaseURL(server.URL))

	_, err := client.TopMovers(context.Background(), "k")
	assert.ErrorIs(t, err, domain.ErrAuthentication)
}
