// Package rest is the JSON-over-HTTP plumbing shared by the upstream adapters.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/pkg/retry"
)

// maxErrorBody caps how much of an error body ends up in logs
const maxErrorBody = 512

// Client sends JSON requests with retry and status mapping
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Retry      retry.Config
	Logger     *slog.Logger
}

// Request describes one upstream call
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   any
}

// New creates a client with a 10s timeout and default retry
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
		Retry:      retry.DefaultConfig(),
		Logger:     logger,
	}
}

// Do sends req and decodes a 2xx body into out
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	cfg := c.Retry
	cfg.OnRetry = func(attempt int, wait time.Duration, err error) {
		c.Logger.Debug("retrying request", "path", req.Path, "attempt", attempt, "wait", wait, "error", err)
	}

	return retry.Do(ctx, cfg, func(ctx context.Context) error {
		return c.once(ctx, req, out)
	})
}

func (c *Client) once(ctx context.Context, r Request, out any) error {
	u, err := url.Parse(c.BaseURL + r.Path)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}
	if len(r.Query) > 0 {
		q := u.Query()
		for k, v := range r.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// url.Error carries the full URL, query keys included
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		c.Logger.Debug("request failed, will retry", "path", r.Path, "error", err)
		return retry.NewRetryableError(fmt.Errorf("%w: %v", domain.ErrExchangeUnavailable, err))
	}
	defer resp.Body.Close()

	if err := c.checkStatus(r.Path, resp); err != nil {
		return err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return retry.NewRetryableError(fmt.Errorf("%w: read body: %v", domain.ErrExchangeUnavailable, err))
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		c.Logger.Error("empty response body", "path", r.Path)
		return fmt.Errorf("%w: empty body", domain.ErrInvalidResponse)
	}
	if bytes.Equal(data, []byte("null")) {
		c.Logger.Error("null response body", "path", r.Path)
		return fmt.Errorf("%w: null body", domain.ErrInvalidResponse)
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.Logger.Error("failed to decode response", "path", r.Path, "error", err)
		return fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidResponse, r.Path, err)
	}

	return nil
}

// checkStatus maps non-2xx responses onto domain errors
func (c *Client) checkStatus(path string, resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.Logger.Warn("upstream rejected credentials", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d", domain.ErrAuthentication, resp.StatusCode)

	case resp.StatusCode == http.StatusTooManyRequests:
		c.Logger.Warn("rate limited by upstream", "path", path)
		return retry.NewRetryableErrorAfter(domain.ErrRateLimited, retry.ParseRetryAfter(resp.Header))

	case resp.StatusCode >= 500:
		c.Logger.Warn("upstream server error", "path", path, "status", resp.StatusCode)
		return retry.NewRetryableError(fmt.Errorf("%w: status %d", domain.ErrExchangeUnavailable, resp.StatusCode))

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.Logger.Error("unexpected response",
			"path", path,
			"status", resp.StatusCode,
			"body", string(body))
		return fmt.Errorf("%w: status %d", domain.ErrInvalidResponse, resp.StatusCode)
	}
}
