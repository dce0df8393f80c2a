// Package fetch is the outbound HTTP plumbing shared by every adapter: a
// rotating browser identity, a randomized pause before each request,
// per-host pacing, a per-adapter circuit breaker and a body size cap.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mssola/useragent"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Config tunes one Client. Zero delays disable the pause; a zero HostRate
// disables pacing.
type Config struct {
	UserAgents   []string
	MinDelay     time.Duration
	MaxDelay     time.Duration
	Timeout      time.Duration
	MaxBodyBytes int64
	HostRate     float64
	HostBurst    int

	BreakerFailureThreshold uint32
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenRequests uint32
}

// Response is a fully read upstream reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        string
}

// StatusError reports a non-2xx reply. The response is still returned next
// to it so adapters can inspect the body.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

var ErrBodyTooLarge = errors.New("response body exceeds limit")

// Client is safe for concurrent use. Each adapter owns one so breakers are
// isolated per source.
type Client struct {
	name     string
	http     *http.Client
	agents   []string
	minDelay time.Duration
	maxDelay time.Duration
	maxBody  int64
	hostRate rate.Limit
	burst    int
	limiters sync.Map
	breaker  *gobreaker.CircuitBreaker[*Response]
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *slog.Logger
	metrics  *Metrics
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient replaces the transport; tests point it at httptest servers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithSleeper replaces the politeness pause.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// New builds a client for the adapter called name. Every entry of the
// user-agent pool must parse as a real browser that is not a bot.
func New(name string, cfg Config, opts ...Option) (*Client, error) {
	if name == "" {
		return nil, errors.New("fetch client name is required")
	}
	if len(cfg.UserAgents) == 0 {
		return nil, errors.New("user agent pool is empty")
	}
	for _, ua := range cfg.UserAgents {
		if err := validateUserAgent(ua); err != nil {
			return nil, err
		}
	}
	if cfg.MaxDelay < cfg.MinDelay {
		return nil, fmt.Errorf("max delay %s is below min delay %s", cfg.MaxDelay, cfg.MinDelay)
	}

	c := &Client{
		name:     name,
		http:     &http.Client{Timeout: cfg.Timeout},
		agents:   append([]string(nil), cfg.UserAgents...),
		minDelay: cfg.MinDelay,
		maxDelay: cfg.MaxDelay,
		maxBody:  cfg.MaxBodyBytes,
		hostRate: rate.Inf,
		burst:    max(cfg.HostBurst, 1),
		sleep:    sleepContext,
		logger:   slog.Default(),
	}
	if cfg.HostRate > 0 {
		c.hostRate = rate.Limit(cfg.HostRate)
	}
	if c.maxBody <= 0 {
		c.maxBody = 5 << 20
	}
	for _, opt := range opts {
		opt(c)
	}

	threshold := max(cfg.BreakerFailureThreshold, 1)
	c.breaker = gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: max(cfg.BreakerHalfOpenRequests, 1),
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("upstream circuit state changed",
				"source", name,
				"from", from.String(),
				"to", to.String(),
			)
			c.metrics.observeBreaker(name, to)
		},
		// 4xx other than 429 is the caller's problem, not the upstream's health.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
			}
			return err == nil
		},
	})
	return c, nil
}

func validateUserAgent(ua string) error {
	parsed := useragent.New(ua)
	browser, _ := parsed.Browser()
	if parsed.Bot() || browser == "" {
		return fmt.Errorf("user agent %q is not a browser identity", ua)
	}
	return nil
}

// Name is the adapter the client belongs to.
func (c *Client) Name() string {
	return c.name
}

// Get pauses, waits for the host's pacing slot, then issues the request
// through the breaker. The returned error is nil only for 2xx replies.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	if err := c.sleep(ctx, c.delay()); err != nil {
		return nil, err
	}
	if err := c.limiter(u.Host).Wait(ctx); err != nil {
		return nil, fmt.Errorf("host pacing %s: %w", u.Host, err)
	}

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*Response, error) {
		return c.do(ctx, u, header)
	})
	c.metrics.observeRequest(c.name, resp, err, time.Since(start))
	if err != nil {
		c.logger.DebugContext(ctx, "upstream request failed",
			"source", c.name,
			"host", u.Host,
			"error", err,
		)
	}
	return resp, err
}

func (c *Client) do(ctx context.Context, u *url.URL, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.pickAgent())
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, ErrBodyTooLarge
	}

	resp := &Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       body,
		URL:        u.String(),
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return resp, &StatusError{StatusCode: res.StatusCode, URL: u.String()}
	}
	return resp, nil
}

func (c *Client) pickAgent() string {
	return c.agents[rand.IntN(len(c.agents))]
}

// delay draws the pause uniformly from [minDelay, maxDelay].
func (c *Client) delay() time.Duration {
	if c.maxDelay <= 0 {
		return 0
	}
	spread := c.maxDelay - c.minDelay
	if spread <= 0 {
		return c.minDelay
	}
	return c.minDelay + rand.N(spread+1)
}

func (c *Client) limiter(host string) *rate.Limiter {
	if l, ok := c.limiters.Load(host); ok {
		return l.(*rate.Limiter)
	}
	l, _ := c.limiters.LoadOrStore(host, rate.NewLimiter(c.hostRate, c.burst))
	return l.(*rate.Limiter)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
