package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/infrastructure/cache"
	"github.com/Tomas-vilte/dbts/internal/logger"
	"github.com/klauspost/compress/gzip"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// UserAgent sends requests with a fixed User-Agent, asks for gzip and
// decodes it, and optionally serves responses from an on-disk cache.
type UserAgent struct {
	client    HTTPClient
	userAgent string
	cache     *cache.Cache
}

type Option func(*UserAgent)

func WithHTTPClient(client HTTPClient) Option {
	return func(u *UserAgent) {
		u.client = client
	}
}

// WithCache makes every successful response cacheable, POST included.
func WithCache(c *cache.Cache) Option {
	return func(u *UserAgent) {
		u.cache = c
	}
}

func NewUserAgent(userAgent string, opts ...Option) *UserAgent {
	u := &UserAgent{
		client:    NewDefaultHTTPClient(),
		userAgent: userAgent,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// NewDefaultHTTPClient returns a client that ignores proxy settings from the
// environment and leaves gzip handling to UserAgent.
func NewDefaultHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DisableCompression = true
	return &http.Client{
		Transport: transport,
		Timeout:   2 * time.Minute,
	}
}

// Get fetches url and fails on a non-2xx status.
func (u *UserAgent) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := u.Do(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apperrors.ErrHTTPStatus.
			WithContext("url", url).
			WithContext("status", resp.StatusCode)
	}
	return resp.Body, nil
}

// Do performs a request and returns the decoded body whatever the status.
func (u *UserAgent) Do(ctx context.Context, method, url string, header http.Header, body []byte) (*Response, error) {
	var key string
	if u.cache != nil {
		key = u.cache.GenerateHash(method, url, string(body))
		if cached, found, err := u.cache.Get(key); err != nil {
			logger.Warn(ctx, "ignoring unreadable cache entry", "url", url, "error", err)
		} else if found {
			logger.Debug(ctx, "http cache hit", "method", method, "url", url, "cache", "hit")
			h := make(http.Header)
			if cached.ContentType != "" {
				h.Set("Content-Type", cached.ContentType)
			}
			return &Response{StatusCode: cached.StatusCode, Header: h, Body: cached.Body}, nil
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, apperrors.ErrHTTPRequest.WithError(err).WithContext("url", url)
	}
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("User-Agent", u.userAgent)
	req.Header.Set("Accept-Encoding", "gzip")

	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrHTTPRequest.WithError(err).WithContext("url", url)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := readBody(resp)
	if err != nil {
		return nil, apperrors.ErrDecodeResponse.WithError(err).WithContext("url", url)
	}
	logger.Debug(ctx, "http request",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond),
		"bytes", len(data))

	result := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}
	if u.cache != nil && result.OK() {
		err := u.cache.Set(key, &cache.CachedResponse{
			URL:         url,
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        data,
		})
		if err != nil {
			logger.Warn(ctx, "could not store response in cache", "url", url, "error", err)
		}
	}
	return result, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	if !strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		return io.ReadAll(resp.Body)
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()
	return io.ReadAll(zr)
}
