package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/kirana_cart/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultTimeout = 10 * time.Second

type Options struct {
	// BaseURL is the API root, e.g. http://localhost:5000/api.
	BaseURL string
	Timeout time.Duration
	Breaker circuitbreaker.Settings
	// Transport defaults to http.DefaultTransport. It is always wrapped with
	// otelhttp.
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client talks to the remote API. Every call is one request with no retry;
// failures surface as the fixed error of the calling operation.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     *slog.Logger
}

func New(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	bs := opts.Breaker
	if bs.Name == "" {
		bs.Name = "remote-api"
	}
	if bs.Logger == nil {
		bs.Logger = log
	}
	if bs.IsSuccessful == nil {
		bs.IsSuccessful = serverHealthy
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		breaker: circuitbreaker.New[[]byte](bs),
		log:     log,
	}
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

// serverHealthy keeps 4xx answers out of the breaker's failure count: the
// server responded, it just rejected the request.
func serverHealthy(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status < http.StatusInternalServerError
	}
	return err == nil
}

// call sends body as JSON and returns the raw 2xx response body. Any failure
// is logged at debug with its cause and replaced by fail.
func (c *Client) call(ctx context.Context, method, path string, body any, fail error) ([]byte, error) {
	resp, err := c.breaker.Execute(func() ([]byte, error) {
		return c.send(ctx, method, path, body)
	})
	if err != nil {
		c.log.DebugContext(ctx, "remote call failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return nil, fail
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

func (c *Client) decode(ctx context.Context, data []byte, v any, fail error) error {
	if err := json.Unmarshal(data, v); err != nil {
		c.log.DebugContext(ctx, "decode remote response", "error", err)
		return fail
	}
	return nil
}
