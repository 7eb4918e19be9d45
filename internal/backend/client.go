package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tillpoint/posadmin/internal/metrics"
	"github.com/tillpoint/posadmin/internal/observability"
	"github.com/tillpoint/posadmin/internal/requestid"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config holds the connection settings for New.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// Client talks to the POS backend.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	UserAgent  string
	Clock      func() time.Time
}

// New builds a client from cfg. A non-positive RequestsPerSecond disables
// pacing.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		BaseURL:    strings.TrimRight(base, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  cfg.UserAgent,
	}

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		client.Limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return client, nil
}

// request describes one backend call. label names the endpoint in metrics
// and logs without embedding record IDs.
type request struct {
	method      string
	path        string
	label       string
	body        io.Reader
	contentType string
}

func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	if c == nil {
		return nil, errors.New("backend client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for request slot: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.BaseURL+r.path, r.body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	_, id := requestid.Ensure(ctx)
	req.Header.Set(requestid.Header, id)

	started := c.now()
	resp, err := c.httpClient().Do(req)
	elapsed := c.now().Sub(started)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	metrics.RecordBackendRequest(r.label, status, elapsed)

	if logger := observability.CLILogger; logger != nil {
		fields := []zap.Field{
			zap.String("endpoint", r.label),
			zap.String("method", r.method),
			zap.String("request_id", id),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		logger.Debug("Backend request", fields...)
	}

	return resp, err
}

func (c *Client) getJSON(ctx context.Context, path, label string, out any) error {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: path, label: label})
	if err != nil {
		return err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if !isSuccess(resp.StatusCode) {
		return readAPIError(resp, label)
	}
	return decodeJSON(resp.Body, out)
}

func (c *Client) sendJSON(ctx context.Context, path, label string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		label:       label,
		body:        bytes.NewReader(data),
		contentType: "application/json",
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if !isSuccess(resp.StatusCode) {
		return readAPIError(resp, label)
	}
	return decodeJSON(resp.Body, out)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

func (c *Client) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func decodeJSON(r io.Reader, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(r, maxBodyBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(r, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Ping reports whether the backend answers HTTP at all. Any status counts as
// reachable; only transport failures are returned.
func (c *Client) Ping(ctx context.Context) (int, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/get_users", label: "ping"})
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
