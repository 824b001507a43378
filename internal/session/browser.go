package session

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	. "github.com/roelfdiedericks/pplxmodels/internal/logging"
)

// BrowserOptions configures the stealth browser backend.
type BrowserOptions struct {
	Headful     bool   `json:"headful"`     // show the window; headless when false
	NoSandbox   bool   `json:"noSandbox"`   // needed when running as root / in Docker
	Bin         string `json:"bin"`         // Chrome binary; looked up when empty
	UserDataDir string `json:"userDataDir"` // profile dir; temporary when empty
}

// fetchJS runs inside the page so the request carries Chrome's own
// TLS and HTTP fingerprint along with the page cookies.
const fetchJS = `(u) => fetch(u, {credentials: "include"}).then(async (r) => ({
	status: r.status,
	contentType: r.headers.get("content-type") || "",
	body: await r.text(),
}))`

// process is the launched Chrome; *launcher.Launcher satisfies it.
type process interface {
	Kill()
	Cleanup()
}

type browserClient struct {
	proc      process
	browser   *rod.Browser
	page      *rod.Page
	opts      Options
	navigated bool
}

func newBrowserClient(opts Options) (*browserClient, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	L_debug("session: launching browser", "headless", !opts.Browser.Headful, "noSandbox", opts.Browser.NoSandbox)

	bin := opts.Browser.Bin
	if bin == "" {
		bin, _ = launcher.LookPath()
	}
	l := launcher.New().
		Headless(!opts.Browser.Headful).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage")
	if bin != "" {
		l = l.Bin(bin)
	}
	if opts.Browser.UserDataDir != "" {
		l = l.UserDataDir(opts.Browser.UserDataDir)
	}
	if opts.Browser.NoSandbox {
		l = l.Set("no-sandbox")
	}

	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	c := &browserClient{proc: l, opts: opts}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	c.browser = browser

	if opts.Token != "" {
		err := browser.SetCookies([]*proto.NetworkCookieParam{{
			Name:     SessionCookieName,
			Value:    opts.Token,
			Domain:   base.Hostname(),
			Path:     "/",
			Secure:   base.Scheme == "https",
			HTTPOnly: true,
		}})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to set session cookie: %w", err)
		}
	}

	page, err := stealth.Page(browser)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}
	c.page = page

	L_debug("session: browser connected", "controlURL", controlURL)
	return c, nil
}

func (c *browserClient) Get(ctx context.Context, target string) (*Response, error) {
	page := c.page.Context(ctx).Timeout(c.opts.Timeout)

	// fetch() needs a same-origin document for the cookie to be sent.
	if !c.navigated {
		if err := page.Navigate(c.opts.BaseURL); err != nil {
			return nil, fmt.Errorf("browser navigation failed: %w", err)
		}
		if err := page.WaitLoad(); err != nil {
			L_warn("session: browser WaitLoad failed", "url", c.opts.BaseURL, "error", err)
		}
		c.navigated = true
	}

	res, err := page.Evaluate(rod.Eval(fetchJS, target).ByPromise())
	if err != nil {
		return nil, fmt.Errorf("browser fetch failed: %w", err)
	}

	resp := &Response{
		StatusCode:  res.Value.Get("status").Int(),
		ContentType: res.Value.Get("contentType").Str(),
		Body:        []byte(res.Value.Get("body").Str()),
	}
	L_trace("session: browser GET done", "url", target, "status", resp.StatusCode, "bytes", len(resp.Body))
	return resp, nil
}

func (c *browserClient) Close() error {
	var err error
	if c.page != nil {
		c.page.Close()
	}
	if c.browser != nil {
		if cerr := c.browser.Close(); cerr != nil {
			err = fmt.Errorf("failed to close browser: %w", cerr)
		}
	}
	if c.proc != nil {
		// Kill first so Cleanup never waits on a browser that ignored Close.
		c.proc.Kill()
		if c.opts.Browser.UserDataDir == "" {
			c.proc.Cleanup()
		}
	}
	return err
}
