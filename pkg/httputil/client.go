package httputil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/barrace/pkg/buildinfo"
	"github.com/matzehuels/barrace/pkg/cache"
	"github.com/matzehuels/barrace/pkg/errors"
	"github.com/matzehuels/barrace/pkg/observability"
)

// Defaults for [Client].
const (
	DefaultTimeout  = 15 * time.Second
	DefaultMaxBytes = 8 << 20
	DefaultAttempts = 3
)

// Resource is a fetched body with its media type.
type Resource struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

// Client fetches remote resources with retries and an optional byte cache.
// The zero value is not usable; use [NewClient].
type Client struct {
	http     *http.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	maxBytes int64
	attempts int
	delay    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) ClientOption { return func(c *Client) { c.http = h } }

// WithCache stores fetched resources in c for ttl.
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) ClientOption {
	return func(cl *Client) { cl.cache, cl.keyer, cl.ttl = c, keyer, ttl }
}

// WithMaxBytes limits response bodies.
func WithMaxBytes(n int64) ClientOption { return func(c *Client) { c.maxBytes = n } }

// WithRetry sets the attempt count and initial backoff delay.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// NewClient creates a client. Without WithCache nothing is cached.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:     &http.Client{Timeout: DefaultTimeout},
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		maxBytes: DefaultMaxBytes,
		attempts: DefaultAttempts,
		delay:    time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	if c.keyer == nil {
		c.keyer = cache.NewDefaultKeyer()
	}
	return c
}

// Get fetches rawURL, serving it from the cache when possible. 5xx and 429
// responses and transport errors are retried; 404 maps to NOT_FOUND and
// other non-2xx statuses to NETWORK_ERROR.
func (c *Client) Get(ctx context.Context, rawURL string) (Resource, error) {
	key := c.keyer.HTTPKey("asset", rawURL)
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		var r Resource
		if json.Unmarshal(data, &r) == nil {
			observability.Cache().OnCacheHit(ctx, "asset")
			return r, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "asset")

	var res Resource
	err := Retry(ctx, c.attempts, c.delay, func() error {
		r, err := c.fetch(ctx, rawURL)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return Resource{}, err
	}

	if data, err := json.Marshal(res); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, "asset", len(data))
		}
	}
	return res, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) (Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Resource{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Resource{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("User-Agent", "barrace/"+buildinfo.Version)

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return Resource{}, ctx.Err()
		}
		return Resource{}, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", rawURL)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Resource{}, errors.New(errors.ErrCodeNotFound, "fetch %s: not found", rawURL)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return Resource{}, &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "fetch %s: %s", rawURL, resp.Status)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Resource{}, errors.New(errors.ErrCodeNetwork, "fetch %s: %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return Resource{}, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "read %s", rawURL)}
	}
	if int64(len(data)) > c.maxBytes {
		return Resource{}, errors.New(errors.ErrCodeInvalidInput, "fetch %s: body exceeds %d bytes", rawURL, c.maxBytes)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return Resource{Data: data, ContentType: ct}, nil
}
