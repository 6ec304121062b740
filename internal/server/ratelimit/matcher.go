package ratelimit

import (
	"net/http"
	"strings"
)

var unlimited = &EndpointConfig{}

// MatchEndpoint returns the configuration for a request, or nil to use the
// default limit. Exact paths win over prefixes (paths ending in "/"); the
// longest prefix wins among prefixes. Health checks and CORS preflights are
// unlimited.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodOptions || (path == "/health" && method == http.MethodGet) {
		return unlimited
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			if best == nil || len(c.Path) > len(best.Path) {
				best = c
			}
		}
	}
	return best
}

// key groups requests sharing a bucket: prefix rules share one bucket for
// every path under the prefix.
func (c *EndpointConfig) key(path string) string {
	if c.Path == "" {
		return path
	}
	return c.Path
}
