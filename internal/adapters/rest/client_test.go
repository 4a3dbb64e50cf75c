package rest_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prxgr4mmer/crypto-service/internal/adapters/rest"
	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/pkg/retry"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(url string) *rest.Client {
	c := rest.New(url, newTestLogger())
	c.Retry = retry.Config{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2,
	}
	return c
}

func TestClient_Do_SendsQueryHeadersAndBody(t *testing.T) {
	type payload struct {
		Code string `json:"code"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/coins/single", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("currency"))
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "BTC", in.Code)

		w.Write([]byte(`{"code":"ETH"}`))
	}))
	defer server.Close()

	var out payload
	err := newTestClient(server.URL).Do(context.Background(), rest.Request{
		Method: http.MethodPost,
		Path:   "/coins/single",
		Query:  map[string]string{"currency": "USD"},
		Header: http.Header{"X-Api-Key": []string{"secret"}},
		Body:   payload{Code: "BTC"},
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, "ETH", out.Code)
}

func TestClient_Do_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		attempts int32
	}{
		{"unauthorized", http.StatusUnauthorized, "", domain.ErrAuthentication, 1},
		{"forbidden", http.StatusForbidden, "", domain.ErrAuthentication, 1},
		{"rate limited is retried", http.StatusTooManyRequests, "", domain.ErrRateLimited, 3},
		{"server error is retried", http.StatusBadGateway, "", domain.ErrExchangeUnavailable, 3},
		{"bad request", http.StatusBadRequest, `{"error":"nope"}`, domain.ErrInvalidResponse, 1},
		{"empty body", http.StatusOK, "  ", domain.ErrInvalidResponse, 1},
		{"null body", http.StatusOK, "null", domain.ErrInvalidResponse, 1},
		{"padded null body", http.StatusOK, " null\n", domain.ErrInvalidResponse, 1},
		{"undecodable body", http.StatusOK, "not json", domain.ErrInvalidResponse, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			var out map[string]any
			err := newTestClient(server.URL).Do(context.Background(), rest.Request{Path: "/v1/symbols"}, &out)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.attempts, calls.Load())
		})
	}
}

func TestClient_Do_RecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[1,2,3]`))
	}))
	defer server.Close()

	var out []int
	err := newTestClient(server.URL).Do(context.Background(), rest.Request{Path: "/"}, &out)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Do_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	var out map[string]any
	err := newTestClient(url).Do(context.Background(), rest.Request{
		Path:  "/query",
		Query: map[string]string{"apikey": "query-secret"},
	}, &out)

	assert.ErrorIs(t, err, domain.ErrExchangeUnavailable)
	assert.NotContains(t, err.Error(), "query-secret")
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out map[string]any
	err := newTestClient(server.URL).Do(ctx, rest.Request{Path: "/"}, &out)

	assert.ErrorIs(t, err, context.Canceled)
}
