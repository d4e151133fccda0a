// Package catalogapi is the REST client for the product catalog service.
// It fetches category listings and single products, unwrapping whichever
// response envelope the service used.
package catalogapi

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/HerbHall/pricescout/internal/payload"
)

// Observer receives request and cache measurements.
type Observer interface {
	ObserveRequest(endpoint string, status int, d time.Duration)
	ObserveCache(hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, int, time.Duration) {}
func (nopObserver) ObserveCache(bool)                         {}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second; 0 disables limiting
	PageLimit int     // value of the limit query parameter
	CacheTTL  time.Duration
	CacheSize int // 0 disables the response cache
	UserAgent string
}

// Client talks to the catalog API. It is safe for concurrent use.
type Client struct {
	http      *resty.Client
	limiter   *rate.Limiter
	cache     *expirable.LRU[string, payload.Result]
	observer  Observer
	logger    *zap.Logger
	pageLimit int

	mu    sync.RWMutex
	token string
}

// Option customizes a Client.
type Option func(*Client)

// WithObserver reports requests and cache lookups to o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithTransport adjusts the underlying resty client, e.g. to add retries
// or a custom TLS configuration.
func WithTransport(configure func(*resty.Client)) Option {
	return func(c *Client) { configure(c.http) }
}

// New creates a client for opts.BaseURL.
func New(opts Options, logger *zap.Logger, options ...Option) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("catalogapi: base URL is required")
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("catalogapi: cookie jar: %w", err)
	}

	c := &Client{
		observer:  nopObserver{},
		logger:    logger.Named("catalogapi"),
		pageLimit: opts.PageLimit,
	}
	if c.pageLimit <= 0 {
		c.pageLimit = 200
	}
	if opts.RateLimit > 0 {
		burst := max(1, int(opts.RateLimit))
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	if opts.CacheSize > 0 {
		c.cache = expirable.NewLRU[string, payload.Result](opts.CacheSize, nil, opts.CacheTTL)
	}

	c.http = resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetCookieJar(jar).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		c.http.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		c.http.SetHeader("User-Agent", opts.UserAgent)
	}

	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if tok := c.Token(); tok != "" {
			req.SetAuthToken(tok)
		}
		return nil
	})
	c.http.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		c.observe(res.Request, res.StatusCode(), res.Time())
		return nil
	})
	c.http.OnError(func(req *resty.Request, err error) {
		c.observe(req, 0, time.Since(req.Time))
	})

	for _, o := range options {
		o(c)
	}
	return c, nil
}

// SetToken sets the bearer token sent with every request. An empty token
// clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Purge empties the response cache.
func (c *Client) Purge() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

func (c *Client) observe(req *resty.Request, status int, d time.Duration) {
	c.observer.ObserveRequest(endpointName(req), status, d)
	c.logger.Debug("api request",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Int("status", status),
		zap.Duration("duration", d),
	)
}

// endpointName is the request's path template, used as a metric label.
func endpointName(req *resty.Request) string {
	if ep, ok := req.Context().Value(endpointKey{}).(string); ok {
		return ep
	}
	return "other"
}

type endpointKey struct{}

// request prepares a rate-limited request tagged with an endpoint label.
func (c *Client) request(ctx context.Context, endpoint string) (*resty.Request, error) {
	if c.limiter != nil {
		// Wait fails early when the deadline is too close to get a token.
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &transportError{kind: ErrTimeout, err: err}
		}
	}
	return c.http.R().SetContext(context.WithValue(ctx, endpointKey{}, endpoint)), nil
}

// Do sends method to path with an optional JSON body and decodes a JSON
// response into out (if non-nil). It is used by the wishlist and alert
// collaborators, which share the catalog service's session.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.request(ctx, endpointTemplate(path))
	if err != nil {
		return err
	}
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	res, err := req.Execute(method, path)
	if err != nil {
		return mapError(err)
	}
	return checkStatus(res)
}

func checkStatus(res *resty.Response) error {
	if res.IsSuccess() {
		return nil
	}
	return &StatusError{
		StatusCode: res.StatusCode(),
		Method:     res.Request.Method,
		URL:        res.Request.URL,
		Message:    errorMessage(res.Body()),
	}
}

// endpointTemplate replaces the id segment of "/wishlist/abc" style paths
// so metric labels stay bounded.
func endpointTemplate(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 1 {
		parts = append(parts[:1], "{id}")
	}
	return strings.Join(parts, "/")
}
