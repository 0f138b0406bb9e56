// Package apiclient is the console's only way to reach the library REST
// API.
//
// A Client is immutable once built. WithToken returns a copy bound to one
// session's bearer token, so building a request depends only on the request
// and that token. Every call passes a shared rate limiter and circuit
// breaker, GETs are retried with exponential backoff, and every non-2xx
// status comes back as a typed *errors.AppError.
package apiclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xiebiao/libadmin/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/logger"
	"github.com/xiebiao/libadmin/pkg/metrics"
	"github.com/xiebiao/libadmin/pkg/tracing"
)

const (
	tracerName = "libadmin/apiclient"
	// HeaderRequestID correlates console logs with API logs.
	HeaderRequestID = "X-Request-ID"
	maxErrorBody    = 4 << 10
)

// Config of the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is requests per second; zero or less disables limiting.
	RateLimit float64
	Burst     int
	// Retries is the number of extra attempts for GET requests.
	Retries      int
	RetryBackoff time.Duration
	// InsecureSkipVerify accepts self-signed certificates of a local API.
	InsecureSkipVerify bool
}

// Client calls the library API.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	breaker *circuitbreaker.CircuitBreaker
	retries int
	backoff time.Duration
	token   string
	log     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport, e.g. with an httptest server's.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a client without a token.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", cfg.BaseURL)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}

	c := &Client{
		base:    base,
		limiter: rate.NewLimiter(limit, burst),
		retries: max(cfg.Retries, 0),
		backoff: backoff,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // local development API only
		}
		c.http = &http.Client{Timeout: cfg.Timeout, Transport: transport}
	}
	if c.breaker == nil {
		c.breaker = NewBreaker("library-api", circuitbreaker.Config{})
	}
	c.log = logger.OrNop(c.log)
	return c, nil
}

// NewBreaker builds a breaker that only counts failures of the remote side
// and reports its state to prometheus.
func NewBreaker(name string, cfg circuitbreaker.Config) *circuitbreaker.CircuitBreaker {
	cfg.IsSuccessful = Healthy
	cb := circuitbreaker.New(name, cfg)
	metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(circuitbreaker.StateClosed))
	cb.OnStateChange(func(name string, _, to circuitbreaker.State) {
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
	})
	return cb
}

// Healthy reports whether err says the API is up: success, or any answer
// in the 4xx range.
func Healthy(err error) bool {
	if err == nil {
		return true
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Status >= 400 && appErr.Status < 500
}

// WithToken returns a copy of c that sends token as bearer credential. An
// empty token sends no Authorization header at all.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Token is the bound bearer token.
func (c *Client) Token() string {
	return c.token
}

// call describes one endpoint invocation.
type call struct {
	method string
	// endpoint is the route template used as metric label, e.g. /book/{id}.
	endpoint string
	path     string
	query    url.Values
	body     any
}

// newRequest builds the HTTP request for cl. It reads nothing but cl and
// the bound token.
func (c *Client) newRequest(ctx context.Context, cl call, requestID string) (*http.Request, error) {
	u := c.base.JoinPath(cl.path)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		buf, err := json.Marshal(cl.body)
		if err != nil {
			return nil, apperrors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return nil, apperrors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do runs cl and decodes a 2xx body into out when out is non-nil and the
// body is not empty.
func (c *Client) do(ctx context.Context, cl call, out any) (err error) {
	requestID := uuid.NewString()
	ctx, span := tracing.StartSpan(ctx, tracerName, cl.method+" "+cl.endpoint,
		attribute.String("http.request.method", cl.method),
		attribute.String("libadmin.request_id", requestID))
	defer func() { tracing.End(span, err) }()

	attempts := 1
	if cl.method == http.MethodGet {
		attempts += c.retries
	}

	for i := 0; i < attempts; i++ {
		if i > 0 {
			metrics.IncCounterVec(metrics.APIRetriesTotal, map[string]string{"endpoint": cl.endpoint})
			if werr := sleep(ctx, c.backoff<<(i-1)); werr != nil {
				return canceled(werr)
			}
		}

		if werr := c.limiter.Wait(ctx); werr != nil {
			return canceled(werr)
		}

		err = c.breaker.Execute(ctx, func(ctx context.Context) error {
			return c.roundTrip(ctx, cl, requestID, out)
		})
		if errors.Is(err, circuitbreaker.ErrOpenState) {
			metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": c.breaker.Name(), "result": "rejected"})
			return apperrors.ErrUnavailable.WithCause(err)
		}
		result := "success"
		if !Healthy(err) {
			result = "failure"
		}
		metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": c.breaker.Name(), "result": result})

		if err == nil || !retryable(err) || ctx.Err() != nil {
			return err
		}
		c.log.Debug("retrying api call",
			zap.String("endpoint", cl.endpoint),
			zap.Int("attempt", i+1),
			zap.Error(err))
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, cl call, requestID string, out any) error {
	req, err := c.newRequest(ctx, cl, requestID)
	if err != nil {
		return err
	}
	tracing.Inject(ctx, req.Header)

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start).Seconds()
	metrics.ObserveHistogramVec(metrics.APIRequestDuration,
		map[string]string{"method": cl.method, "endpoint": cl.endpoint}, elapsed)

	if err != nil {
		metrics.IncCounterVec(metrics.APIRequestsTotal,
			map[string]string{"method": cl.method, "endpoint": cl.endpoint, "status": "error"})
		if ctx.Err() != nil {
			return canceled(ctx.Err())
		}
		return apperrors.ErrNetwork.WithCause(err)
	}
	defer resp.Body.Close()

	metrics.IncCounterVec(metrics.APIRequestsTotal,
		map[string]string{"method": cl.method, "endpoint": cl.endpoint, "status": strconv.Itoa(resp.StatusCode)})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		c.log.Info("api call rejected",
			zap.String("method", cl.method),
			zap.String("endpoint", cl.endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", requestID),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.ErrNetwork.WithCause(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.ErrUpstream.WithMessage("library service sent an unreadable response").
			WithCause(fmt.Errorf("decode %s %s: %w", cl.method, cl.endpoint, err))
	}
	return nil
}

// retryable covers transport failures, 5xx and 429.
func retryable(err error) bool {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch {
	case appErr.Code == apperrors.ErrCodeNetwork:
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	case appErr.Status == http.StatusTooManyRequests:
		return true
	case appErr.Status >= 500:
		return true
	}
	return false
}

func canceled(err error) error {
	return apperrors.ErrNetwork.WithMessage("request was cancelled").WithCause(err)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
