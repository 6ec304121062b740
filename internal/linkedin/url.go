// Package linkedin derives the keys used to match LinkedIn profile URLs
// against stored contacts.
package linkedin

import (
	"net/url"
	"regexp"
	"strings"
)

var usernamePattern = regexp.MustCompile(`(?i)linkedin\.com/in/([^/?#\s]+)`)

// NormalizeProfileURL reduces a profile URL to its lowercased path without a
// trailing slash, e.g. "/in/jane-doe". Input that cannot be parsed as a URL
// is returned lowercased.
func NormalizeProfileURL(raw string) string {
	raw = strings.TrimSpace(raw)
	full := raw
	if !strings.HasPrefix(full, "http") {
		full = "https://" + full
	}

	u, err := url.Parse(full)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}

	path := strings.TrimSuffix(u.EscapedPath(), "/")
	return strings.ToLower(path)
}

// Username returns the lowercased "/in/<username>" segment of a profile URL,
// or "" when the URL has none.
func Username(raw string) string {
	m := usernamePattern.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// LookupKeys returns the non-empty keys a stored URL is matched against:
// the normalized path and, when it differs, the "/in/<username>" segment.
// A URL that yields no usable key matches nothing.
func LookupKeys(raw string) []string {
	var keys []string
	if path := NormalizeProfileURL(raw); path != "" && path != "/" {
		keys = append(keys, path)
	}
	if user := Username(raw); user != "" {
		if key := "/in/" + user; len(keys) == 0 || keys[0] != key {
			keys = append(keys, key)
		}
	}
	return keys
}

// IsProfileURL reports whether raw points at a LinkedIn member profile.
func IsProfileURL(raw string) bool {
	u, ok := parseLinkedIn(raw)
	return ok && strings.HasPrefix(strings.ToLower(u.Path), "/in/") && Username(raw) != ""
}

// IsJobURL reports whether raw points at a LinkedIn job posting, either the
// view page or a search page with a selected job.
func IsJobURL(raw string) bool {
	u, ok := parseLinkedIn(raw)
	if !ok {
		return false
	}
	path := strings.ToLower(u.Path)
	if strings.HasPrefix(path, "/jobs/view/") {
		return true
	}
	return strings.HasPrefix(path, "/jobs/") && u.Query().Get("currentJobId") != ""
}

func parseLinkedIn(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	host := strings.ToLower(u.Hostname())
	if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
		return nil, false
	}
	return u, true
}
