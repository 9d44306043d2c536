// Package apiclient is a thin JSON-over-HTTP client for the tutor-bot
// backend: one configurable origin, bearer auth, per-request timeouts and a
// single normalised error type.
package apiclient

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL       = "http://localhost:5000"
	DefaultTimeout       = 10 * time.Second
	DefaultAuthedTimeout = 30 * time.Second
)

// Client issues requests against a single backend origin. It holds no
// per-user state and is safe for concurrent use.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	timeout       time.Duration
	authedTimeout time.Duration
	observer      Observer
	requestID     func() string
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeouts sets the default timeout and the one used by AuthedGet/AuthedPost.
func WithTimeouts(standard, authed time.Duration) ClientOption {
	return func(c *Client) {
		if standard > 0 {
			c.timeout = standard
		}
		if authed > 0 {
			c.authedTimeout = authed
		}
	}
}

// WithObserver registers a hook told about every finished request.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithRequestIDs sets the generator for the X-Request-ID header (primarily for testing).
func WithRequestIDs(gen func() string) ClientOption {
	return func(c *Client) {
		if gen != nil {
			c.requestID = gen
		}
	}
}

// New creates a Client for baseURL. An empty baseURL selects DefaultBaseURL;
// trailing slashes are stripped.
func New(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:       NormaliseBaseURL(baseURL),
		httpClient:    &http.Client{},
		timeout:       DefaultTimeout,
		authedTimeout: DefaultAuthedTimeout,
		observer:      nopObserver{},
		requestID:     uuid.NewString,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved origin requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NormaliseBaseURL applies the default and strips trailing slashes.
func NormaliseBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return DefaultBaseURL
	}
	u = strings.TrimRight(u, "/")
	if u == "" {
		return DefaultBaseURL
	}
	return u
}
