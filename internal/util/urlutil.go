package util

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeServerURL parses a raw server address and returns a canonical base
// URL with a scheme and no trailing slash. Bare host[:port] strings are
// accepted and assumed to be http. It returns an error with a clear message
// when the address cannot be used as an HTTP base URL.
func NormalizeServerURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty server address")
	}

	u, err := url.Parse(raw)
	if err == nil && (u.Scheme == "" || u.Host == "") {
		if u2, e2 := url.Parse("http://" + raw); e2 == nil {
			u = u2
		}
	}
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid server address %q", raw)
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported scheme %q in server address %q (use http or https)", u.Scheme, raw)
	}

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// JoinBaseURL appends a path to a normalized base URL.
func JoinBaseURL(base, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + path
}
