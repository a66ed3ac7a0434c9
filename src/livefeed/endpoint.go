package livefeed

import (
	"errors"
	"strings"
)

// ErrNoEndpoint means no source supplied a feed URL.
var ErrNoEndpoint = errors.New("no live feed endpoint configured")

// EndpointSources lists the candidate feed URLs in priority order.
type EndpointSources struct {
	Explicit  string // command-line argument
	Injected  string // runtime override (environment variable)
	Persisted string // stored preference
	Default   string // configuration file
}

// ResolveEndpoint picks the first non-empty source. When secure is set an
// insecure ws:// URL is upgraded to wss://.
func ResolveEndpoint(src EndpointSources, secure bool) (string, error) {
	for _, candidate := range []string{src.Explicit, src.Injected, src.Persisted, src.Default} {
		if c := strings.TrimSpace(candidate); c != "" {
			if secure {
				c = UpgradeScheme(c)
			}
			return c, nil
		}
	}
	return "", ErrNoEndpoint
}

// UpgradeScheme rewrites a ws:// prefix (any case) to wss://.
func UpgradeScheme(url string) string {
	if len(url) >= 5 && strings.EqualFold(url[:5], "ws://") {
		return "wss://" + url[5:]
	}
	return url
}
