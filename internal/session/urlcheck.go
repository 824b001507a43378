package session

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateBaseURL checks that raw is an absolute http(s) URL with a host
// and no path beyond "/".
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("URL scheme %q not allowed (only http/https)", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("URL has empty hostname")
	}
	if u.User != nil {
		return fmt.Errorf("URL must not carry credentials")
	}
	if strings.Trim(u.Path, "/") != "" || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("base URL must not have a path, query or fragment")
	}
	return nil
}
