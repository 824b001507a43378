// Package fetcher scrapes the list of available models from the service's
// web front-end, falling back to a static catalog when that fails.
package fetcher

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/roelfdiedericks/pplxmodels/internal/extract"
	. "github.com/roelfdiedericks/pplxmodels/internal/logging"
	"github.com/roelfdiedericks/pplxmodels/internal/models"
	"github.com/roelfdiedericks/pplxmodels/internal/session"
)

// SettingsEndpoints are tried, in order, when the page yields nothing.
var SettingsEndpoints = []string{
	"/api/auth/session",
	"/api/user/settings",
}

// Fetcher fetches and caches the model list for one session token.
// A Fetcher is not safe for concurrent use.
type Fetcher struct {
	opts    session.Options
	factory session.Factory
	holder  *session.Holder

	models []models.ModelInfo
	source models.Source
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL points the fetcher at another host.
func WithBaseURL(baseURL string) Option {
	return func(f *Fetcher) { f.opts.BaseURL = baseURL }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.opts.Timeout = d }
}

// WithImpersonate selects the client backend ("http" or "browser").
func WithImpersonate(mode string) Option {
	return func(f *Fetcher) { f.opts.Impersonate = mode }
}

// WithBrowserOptions configures the browser backend.
func WithBrowserOptions(b session.BrowserOptions) Option {
	return func(f *Fetcher) { f.opts.Browser = b }
}

// WithClient makes the fetcher use c instead of building its own client.
func WithClient(c session.Client) Option {
	return func(f *Fetcher) {
		f.factory = func(session.Options) (session.Client, error) { return c, nil }
	}
}

// New returns a Fetcher for the given session token. No connection is made
// until the first fetch.
func New(token string, opts ...Option) *Fetcher {
	f := &Fetcher{
		opts:    session.Options{Token: token},
		factory: session.NewClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.holder = session.NewHolderWithFactory(f.opts, f.factory)
	f.opts = f.holder.Options()
	return f
}

// FetchModels returns the models offered to this session. It never fails:
// errors are logged and the fallback catalog is returned instead.
func (f *Fetcher) FetchModels(ctx context.Context) []models.ModelInfo {
	fetchID := uuid.NewString()
	start := time.Now()
	L_debug("fetcher: fetching models", "fetch", fetchID, "baseURL", f.opts.BaseURL)

	list, err := f.FetchFromPage(ctx)
	if err != nil {
		L_error("fetcher: error fetching models, using fallback catalog", "fetch", fetchID, "error", err)
		return f.store(models.Fallback(), models.SourceFallback)
	}

	source := models.SourcePage
	if len(list) == 0 {
		L_debug("fetcher: no models on page, trying settings endpoints", "fetch", fetchID)
		list = f.FetchFromSettings(ctx)
		source = models.SourceSettings
	}
	if len(list) == 0 {
		L_warn("fetcher: no models found, using fallback catalog", "fetch", fetchID)
		list = models.Fallback()
		source = models.SourceFallback
	}

	L_elapsed(start, "fetcher: models fetched", "fetch", fetchID, "source", source, "count", len(list))
	return f.store(list, source)
}

func (f *Fetcher) store(list []models.ModelInfo, source models.Source) []models.ModelInfo {
	f.models = list
	f.source = source
	return slices.Clone(list)
}

// FetchFromPage scrapes the root page. Transport failures and non-2xx
// responses are returned as *RequestError.
func (f *Fetcher) FetchFromPage(ctx context.Context) ([]models.ModelInfo, error) {
	url := f.opts.BaseURL + "/"

	client, err := f.holder.Get()
	if err != nil {
		return nil, &RequestError{URL: url, Err: err}
	}

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, &RequestError{URL: url, Err: err}
	}
	if !resp.OK() {
		return nil, &RequestError{URL: url, StatusCode: resp.StatusCode}
	}

	L_debug("fetcher: page received", "url", url, "bytes", len(resp.Body))
	return extract.Run(resp.Body, extract.PageStrategies()...), nil
}

// FetchFromSettings queries the auxiliary endpoints. Any failure on one
// endpoint skips it; nothing is returned as an error.
func (f *Fetcher) FetchFromSettings(ctx context.Context) []models.ModelInfo {
	client, err := f.holder.Get()
	if err != nil {
		L_debug("fetcher: no client for settings endpoints", "error", err)
		return nil
	}

	var lists [][]models.ModelInfo
	for _, endpoint := range SettingsEndpoints {
		url := f.opts.BaseURL + endpoint

		resp, err := client.Get(ctx, url)
		if err != nil {
			L_debug("fetcher: settings endpoint failed", "url", url, "error", err)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			L_debug("fetcher: settings endpoint non-200", "url", url, "status", resp.StatusCode)
			continue
		}

		found := extract.Settings{ContentType: resp.ContentType}.Extract(resp.Body)
		L_debug("fetcher: settings endpoint scanned", "url", url, "models", len(found))
		lists = append(lists, found)
	}
	return extract.Merge(lists...)
}

// GetModelByID looks id up in the cached list, fetching first if the cache
// is empty.
func (f *Fetcher) GetModelByID(ctx context.Context, id string) (models.ModelInfo, bool) {
	if len(f.models) == 0 {
		f.FetchModels(ctx)
	}
	return models.Find(f.models, id)
}

// Models returns the cached list from the last fetch.
func (f *Fetcher) Models() []models.ModelInfo {
	return slices.Clone(f.models)
}

// Source reports which stage produced the cached list.
func (f *Fetcher) Source() models.Source {
	return f.source
}

// Close releases the underlying client. It is safe to call more than once.
func (f *Fetcher) Close() error {
	return f.holder.Close()
}

// Use builds a Fetcher, runs fn with it and closes it on every exit path,
// including a panic in fn.
func Use(token string, fn func(*Fetcher) error, opts ...Option) (err error) {
	f := New(token, opts...)
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(f)
}

// GetAvailableModels fetches the model list for token in one call.
func GetAvailableModels(ctx context.Context, token string, opts ...Option) []models.ModelInfo {
	var list []models.ModelInfo
	err := Use(token, func(f *Fetcher) error {
		list = f.FetchModels(ctx)
		return nil
	}, opts...)
	if err != nil {
		L_warn("fetcher: close failed", "error", err)
	}
	return list
}
