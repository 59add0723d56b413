package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned while the API is considered down.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Config configures Client.
type Config struct {
	// BaseURL is the API root, e.g. https://ose.example/api/v1.
	BaseURL string

	// Timeout bounds each HTTP attempt. Default: 30 seconds.
	Timeout time.Duration

	// MaxRetries applies to idempotent calls only. Sends are never retried. Default: 3.
	MaxRetries uint64

	// InitialInterval and MaxInterval shape the retry backoff.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// BreakerTimeout is how long the breaker stays open. Default: 30 seconds.
	BreakerTimeout time.Duration

	// HTTPClient overrides the underlying client; Timeout is ignored when set.
	HTTPClient *http.Client
}

func (c *Config) setDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.InitialInterval == 0 {
		c.InitialInterval = 200 * time.Millisecond
	}
	if c.MaxInterval == 0 {
		c.MaxInterval = 5 * time.Second
	}
	if c.BreakerTimeout == 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
}

// serverError marks a 5xx answer so the breaker counts it as a failure.
type serverError struct {
	StatusCode int
}

func (e *serverError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// transport executes requests through a circuit breaker, retrying idempotent ones.
type transport struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	cfg     Config
}

func newTransport(cfg Config) *transport {
	return &transport{
		http: cfg.HTTPClient,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        "ose-api",
			MaxRequests: 1,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
			},
		}),
		cfg: cfg,
	}
}

// do sends one logical request. build is called once per attempt so bodies can be replayed.
// The last 5xx response is returned, not an error, once retries are exhausted.
func (t *transport) do(ctx context.Context, retry bool, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	var retries uint64
	if retry {
		retries = t.cfg.MaxRetries
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = t.cfg.InitialInterval
	bo.MaxInterval = t.cfg.MaxInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx)

	var lastResp *http.Response
	operation := func() error {
		if lastResp != nil {
			lastResp.Body.Close()
			lastResp = nil
		}
		resp, err := t.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			req, err := build(ctx)
			if err != nil {
				return nil, err
			}
			r, err := t.http.Do(req)
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return r, &serverError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}
		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return lastResp, nil
}

func jsonRequest(method, url string, body []byte) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		var req *http.Request
		var err error
		if body == nil {
			req, err = http.NewRequestWithContext(ctx, method, url, http.NoBody)
		} else {
			req, err = http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		}
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}
}
