// Package config loads pplxmodels.json and applies environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/roelfdiedericks/pplxmodels/internal/logging"
	"github.com/roelfdiedericks/pplxmodels/internal/paths"
	"github.com/roelfdiedericks/pplxmodels/internal/session"
)

// Environment variables that override the file.
const (
	EnvToken       = "PPLX_SESSION_TOKEN"
	EnvBaseURL     = "PPLX_BASE_URL"
	EnvImpersonate = "PPLX_IMPERSONATE"
)

// Config is the contents of pplxmodels.json.
type Config struct {
	Token       string                 `json:"token,omitempty"`
	BaseURL     string                 `json:"baseURL"`
	Timeout     Duration               `json:"timeout"`
	Impersonate string                 `json:"impersonate"` // "http" or "browser"
	Browser     session.BrowserOptions `json:"browser"`
	Debug       bool                   `json:"debug,omitempty"`

	// Path the config was read from, empty when defaults only.
	Path string `json:"-"`
}

// Duration accepts "30s" style strings or plain seconds in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("duration must be a string or number of seconds: %w", err)
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseURL:     session.DefaultBaseURL,
		Timeout:     Duration(session.DefaultTimeout),
		Impersonate: session.ImpersonateHTTP,
	}
}

// Load reads the config at path, or the first of ./pplxmodels.json and
// ~/.pplxmodels/pplxmodels.json when path is empty. A missing default file
// is not an error. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		found, err := paths.ConfigPath()
		if err != nil {
			return nil, err
		}
		path = found
	} else {
		expanded, err := paths.ExpandTilde(path)
		if err != nil {
			return nil, err
		}
		path = expanded
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		cfg.Path = path
		logging.L_debug("config: loaded", "path", path)
	}

	// Zero fields take the default; anything set in the file stays.
	if err := mergo.Merge(cfg, Default()); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvImpersonate); v != "" {
		c.Impersonate = strings.ToLower(v)
	}
}

// Validate checks the base URL and backend name.
func (c *Config) Validate() error {
	if err := session.ValidateBaseURL(c.BaseURL); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Impersonate {
	case session.ImpersonateHTTP, session.ImpersonateBrowser:
	default:
		return fmt.Errorf("config: impersonate must be %q or %q, got %q", session.ImpersonateHTTP, session.ImpersonateBrowser, c.Impersonate)
	}
	return nil
}

// SessionOptions converts the config into client options.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		BaseURL:     c.BaseURL,
		Token:       c.Token,
		Timeout:     time.Duration(c.Timeout),
		Impersonate: c.Impersonate,
		Browser:     c.Browser,
	}
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.Token != "" {
		c.Token = "***"
	}
	return c
}
