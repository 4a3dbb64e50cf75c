package http_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpAdapter "github.com/prxgr4mmer/crypto-service/internal/adapters/http"
	"github.com/prxgr4mmer/crypto-service/internal/config"
	"github.com/prxgr4mmer/crypto-service/internal/ports"
)

func TestServer_ServesAndShutsDown(t *testing.T) {
	srv := httpAdapter.NewServer(config.ServerConfig{
		Port:         0,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
		CORSOrigins:  []string{"*"},
	}, httpAdapter.HandlerDeps{
		Market: &mockMarketData{},
		Health: &mockHealthService{status: &ports.HealthStatus{Status: "healthy"}},
	}, newTestLogger())

	assert.Equal(t, ":0", srv.Addr())
	require.NoError(t, srv.Listen())
	assert.NotEqual(t, ":0", srv.Addr())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	_, port, err := net.SplitHostPort(srv.Addr())
	require.NoError(t, err)

	resp, err := http.Get("http://127.0.0.1:" + port + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_ListenFailsOnTakenPort(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	srv := httpAdapter.NewServer(config.ServerConfig{Port: port}, httpAdapter.HandlerDeps{
		Market: &mockMarketData{},
	}, newTestLogger())

	assert.Error(t, srv.Listen())
}
