// Package site is a convenience wrapper around net/http for plugin authors.
//
// A Site binds a base URL, default headers and a shared http.Client. Verb
// methods (Get, Post, ...) return a buffered *Response; the generic helpers
// (GetJSON, GetText, ...) decode the body and honour the OnFail fallback
// convention. Concurrent fans out a batch of requests with bounded workers.
package site

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultUserAgent is sent when no explicit User-Agent header is set.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.30 Safari/537.36"

const defaultTimeout = 30 * time.Second

// ErrNoBase is returned when a relative target is requested on a Site
// configured without a base URL.
var ErrNoBase = errors.New("site: relative target without base URL")

// Site issues HTTP requests against a remote site.
//
// The zero value is not usable; construct with New.
type Site struct {
	base      *url.URL
	client    *http.Client
	userAgent string
	headers   http.Header
	retry     *RetryPolicy
}

// Option configures a Site.
type Option func(*Site) error

// WithBase sets the base URL relative targets resolve against. A base
// without a trailing slash is treated as a directory, so
// WithBase("https://host/api") resolves "v1/x" to "https://host/api/v1/x".
func WithBase(base string) Option {
	return func(s *Site) error {
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("parse base URL: %w", err)
		}
		if !u.IsAbs() {
			return fmt.Errorf("base URL %q is not absolute", base)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		s.base = u
		return nil
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Site) error {
		s.userAgent = ua
		return nil
	}
}

// WithTimeout sets the per-request timeout of the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(s *Site) error {
		s.client.Timeout = d
		return nil
	}
}

// WithHTTPClient replaces the underlying http.Client. The caller keeps
// ownership of transport concerns (pooling, proxies, TLS).
func WithHTTPClient(c *http.Client) Option {
	return func(s *Site) error {
		if c == nil {
			return errors.New("nil http.Client")
		}
		s.client = c
		return nil
	}
}

// WithCookieJar attaches a cookie jar to the underlying client.
func WithCookieJar(jar http.CookieJar) Option {
	return func(s *Site) error {
		s.client.Jar = jar
		return nil
	}
}

// WithInsecureTLS disables certificate verification. For sites behind
// broken or self-signed certificates only.
func WithInsecureTLS() Option {
	return func(s *Site) error {
		var transport *http.Transport
		if t, ok := s.client.Transport.(*http.Transport); ok {
			transport = t.Clone()
		} else if t, ok := http.DefaultTransport.(*http.Transport); ok {
			transport = t.Clone()
		} else {
			transport = &http.Transport{}
		}
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true
		s.client.Transport = transport
		return nil
	}
}

// WithHeader adds a default header sent with every request. Per-request
// headers take precedence.
func WithHeader(key, value string) Option {
	return func(s *Site) error {
		s.headers.Set(key, value)
		return nil
	}
}

// New builds a Site from the given options.
func New(opts ...Option) (*Site, error) {
	s := &Site{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: DefaultUserAgent,
		headers:   make(http.Header),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Base returns the configured base URL, or nil when none is set.
func (s *Site) Base() *url.URL {
	if s.base == nil {
		return nil
	}
	u := *s.base
	return &u
}

// Resolve resolves target against the configured base URL. Absolute targets
// pass through unchanged.
func (s *Site) Resolve(target string) (*url.URL, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse target URL %q: %w", target, err)
	}
	if u.IsAbs() {
		return u, nil
	}
	if s.base == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoBase, target)
	}
	return s.base.ResolveReference(u), nil
}

// Get issues a GET request. The response is returned for any status code;
// only transport failures produce an error.
func (s *Site) Get(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return s.Do(ctx, http.MethodGet, target, opts...)
}

// Post issues a POST request.
func (s *Site) Post(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return s.Do(ctx, http.MethodPost, target, opts...)
}

// Put issues a PUT request.
func (s *Site) Put(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return s.Do(ctx, http.MethodPut, target, opts...)
}

// Patch issues a PATCH request.
func (s *Site) Patch(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return s.Do(ctx, http.MethodPatch, target, opts...)
}

// Delete issues a DELETE request.
func (s *Site) Delete(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return s.Do(ctx, http.MethodDelete, target, opts...)
}

// Head issues a HEAD request.
func (s *Site) Head(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return s.Do(ctx, http.MethodHead, target, opts...)
}

// Do issues a request with the given method. The body is read fully and the
// connection released before Do returns.
func (s *Site) Do(ctx context.Context, method, target string, opts ...RequestOption) (*Response, error) {
	ro := newRequestOptions()
	for _, opt := range opts {
		if err := opt(ro); err != nil {
			return nil, err
		}
	}
	u, err := s.Resolve(target)
	if err != nil {
		return nil, err
	}
	if len(ro.params) > 0 {
		q := u.Query()
		for k, vs := range ro.params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	attempt := func() (*Response, error) {
		return s.send(ctx, method, u, ro)
	}
	if s.retry != nil {
		return doWithRetry(ctx, *s.retry, attempt)
	}
	return attempt()
}

// send performs one attempt. The body is rebuilt from the request options,
// so attempts are independent.
func (s *Site) send(ctx context.Context, method string, u *url.URL, ro *requestOptions) (*Response, error) {
	body, contentType, err := ro.bodyReader()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	// Default headers, weakest first; per-request headers win.
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", s.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if ro.jsonBody != nil {
		req.Header.Set("Accept", "application/json")
	}
	for k, vs := range s.headers {
		req.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range ro.headers {
		req.Header[k] = append([]string(nil), vs...)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, u, err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		URL:        resp.Request.URL,
		body:       data,
	}, nil
}
