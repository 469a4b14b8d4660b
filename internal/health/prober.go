package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// maxDrainBytes bounds how much of a response body is read before the
// connection is returned to the pool.
const maxDrainBytes = 64 << 10

const (
	defaultHost           = "localhost"
	defaultRequestTimeout = 1 * time.Second
	defaultInterval       = 150 * time.Millisecond
)

var errNotReady = errors.New("server not responding")

// Prober checks whether an HTTP server is answering on a local port.
//
// Timeouts are applied per request via context rather than as a global
// client timeout, so a single hung request cannot outlive the overall
// polling deadline.
type Prober struct {
	httpClient     *http.Client
	host           string
	requestTimeout time.Duration
	interval       time.Duration
	logger         *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithHost overrides the host probed (default "localhost").
func WithHost(host string) Option {
	return func(p *Prober) {
		p.host = host
	}
}

// WithRequestTimeout sets the timeout of each individual GET.
func WithRequestTimeout(d time.Duration) Option {
	return func(p *Prober) {
		p.requestTimeout = d
	}
}

// WithInterval sets the pause between failed attempts.
func WithInterval(d time.Duration) Option {
	return func(p *Prober) {
		p.interval = d
	}
}

// NewProber creates a Prober. Without options it probes
// http://localhost:<port>/ with a 1s request timeout and 150ms between
// attempts.
func NewProber(logger *slog.Logger, opts ...Option) *Prober {
	p := &Prober{
		// no default timeout - we use per-request timeouts via context
		httpClient: &http.Client{
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
			// Any response counts, including a redirect to a login page.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		host:           defaultHost,
		requestTimeout: defaultRequestTimeout,
		interval:       defaultInterval,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// URL returns the address probed for port.
func (p *Prober) URL(port int) string {
	return fmt.Sprintf("http://%s:%d/", p.host, port)
}

// Check performs a single GET against the port and reports whether any
// response was received within the request timeout.
func (p *Prober) Check(ctx context.Context, port int) bool {
	return p.attempt(ctx, port) == nil
}

// WaitReady polls the port until a response is received or timeout
// elapses. It never returns an error: a server that is not up yet is the
// expected state while polling.
func (p *Prober) WaitReady(ctx context.Context, port int, timeout time.Duration) bool {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	attempts := 0
	b := backoff.WithContext(backoff.NewConstantBackOff(p.interval), waitCtx)
	err := backoff.Retry(func() error {
		attempts++
		return p.attempt(waitCtx, port)
	}, b)

	p.logger.Debug("health probe finished", "url", p.URL(port), "attempts", attempts, "ready", err == nil)
	return err == nil
}

// Close releases idle connections held by the prober's transport.
// Safe to call multiple times and on a nil receiver.
func (p *Prober) Close() {
	if p == nil || p.httpClient == nil {
		return
	}
	p.httpClient.CloseIdleConnections()
}

func (p *Prober) attempt(ctx context.Context, port int) error {
	reqCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.URL(port), nil)
	if err != nil {
		// A malformed URL will not fix itself; stop polling.
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Debug("health probe attempt failed", "url", req.URL.String(), "error", err)
		return errNotReady
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return nil
}
