package auth

import (
	"net/url"
	"strings"
)

// DefaultLanding is where a login lands when no safe return URL was given.
const DefaultLanding = "/"

// SafeReturnURL keeps a post-login destination only when it stays on this site.
func SafeReturnURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return DefaultLanding
	}
	// "//host" and "/\host" are protocol-relative in browsers.
	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return DefaultLanding
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return DefaultLanding
	}
	return raw
}
