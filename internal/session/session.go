// Package session owns the client used to talk to the service front-end.
//
// A Holder builds its client on first use and keeps it until Close. Two
// backends exist: a plain HTTP client that mimics Chrome's headers, and a
// stealth headless Chrome that issues requests from inside a real page.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	. "github.com/roelfdiedericks/pplxmodels/internal/logging"
)

const (
	DefaultBaseURL    = "https://www.perplexity.ai"
	SessionCookieName = "__Secure-next-auth.session-token"
	DefaultTimeout    = 30 * time.Second

	ImpersonateHTTP    = "http"
	ImpersonateBrowser = "browser"
)

// DefaultHeaders are sent with every request.
var DefaultHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Accept-Encoding":           "gzip, deflate, br",
	"DNT":                       "1",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// Chrome client hints, sent by the HTTP backend only. The browser backend
// gets the real ones from Chrome.
var chromeHeaders = map[string]string{
	"User-Agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Sec-Ch-Ua":          `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
	"Sec-Ch-Ua-Mobile":   "?0",
	"Sec-Ch-Ua-Platform": `"Windows"`,
	"Sec-Fetch-Dest":     "document",
	"Sec-Fetch-Mode":     "navigate",
	"Sec-Fetch-Site":     "same-origin",
}

// Options configures the client a Holder builds.
type Options struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	Impersonate string // "http" (default) or "browser"
	Browser     BrowserOptions
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Impersonate == "" {
		o.Impersonate = ImpersonateHTTP
	}
	return o
}

// Headers returns the default headers plus Referer and Origin for baseURL.
func Headers(baseURL string) map[string]string {
	baseURL = strings.TrimRight(baseURL, "/")
	headers := map[string]string{
		"Referer": baseURL + "/",
		"Origin":  baseURL,
	}
	// Only fills keys that are missing, so Referer/Origin stay as set.
	if err := mergo.Merge(&headers, DefaultHeaders); err != nil {
		L_warn("session: header merge failed", "error", err)
	}
	return headers
}

// Response is a fully read response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client issues GET requests carrying the session cookie.
type Client interface {
	Get(ctx context.Context, url string) (*Response, error)
	Close() error
}

// Factory builds a Client from options.
type Factory func(Options) (Client, error)

// NewClient builds the backend selected by opts.Impersonate.
func NewClient(opts Options) (Client, error) {
	opts = opts.withDefaults()
	switch opts.Impersonate {
	case ImpersonateHTTP:
		return newHTTPClient(opts), nil
	case ImpersonateBrowser:
		return newBrowserClient(opts)
	default:
		return nil, fmt.Errorf("unknown impersonate mode %q (want %q or %q)", opts.Impersonate, ImpersonateHTTP, ImpersonateBrowser)
	}
}

// Holder lazily builds one Client and hands out the same instance until
// Close is called.
type Holder struct {
	opts    Options
	factory Factory

	mu     sync.Mutex
	client Client
}

// NewHolder returns a Holder using the backend named in opts.
func NewHolder(opts Options) *Holder {
	return NewHolderWithFactory(opts, NewClient)
}

// NewHolderWithFactory returns a Holder that builds its client with f.
func NewHolderWithFactory(opts Options, f Factory) *Holder {
	return &Holder{opts: opts.withDefaults(), factory: f}
}

// Options returns the effective options.
func (h *Holder) Options() Options {
	return h.opts
}

// Get returns the held client, building it on first call.
func (h *Holder) Get() (Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.client != nil {
		return h.client, nil
	}

	c, err := h.factory(h.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", h.opts.Impersonate, err)
	}
	h.client = c
	L_debug("session: client created", "impersonate", h.opts.Impersonate, "baseURL", h.opts.BaseURL, "timeout", h.opts.Timeout)
	return c, nil
}

// Active reports whether a client is currently held.
func (h *Holder) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.client != nil
}

// Close releases the held client. Closing an empty Holder is a no-op.
func (h *Holder) Close() error {
	h.mu.Lock()
	c := h.client
	h.client = nil
	h.mu.Unlock()

	if c == nil {
		return nil
	}
	L_debug("session: client closed")
	return c.Close()
}
