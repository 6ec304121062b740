package extract

import (
	"net/url"
	"strings"
)

// Platform identifies a job site with a dedicated parser.
type Platform string

const (
	// PlatformLinkedIn is a LinkedIn job view
	PlatformLinkedIn Platform = "linkedin"
	// PlatformIndeed is an Indeed job view
	PlatformIndeed Platform = "indeed"
	// PlatformGreenhouse is the Greenhouse ATS
	PlatformGreenhouse Platform = "greenhouse"
	// PlatformLever is the Lever ATS
	PlatformLever Platform = "lever"
	// PlatformWorkday is the Workday ATS
	PlatformWorkday Platform = "workday"
	// PlatformUnknown has no dedicated parser
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the job site from a page URL. LinkedIn and
// Indeed only count when the path points at a job view.
func DetectPlatform(u *url.URL) Platform {
	if u == nil {
		return PlatformUnknown
	}

	host := strings.ToLower(u.Hostname())
	path := u.Path

	switch {
	case host == "www.linkedin.com" && strings.Contains(path, "/jobs/"):
		return PlatformLinkedIn
	case strings.Contains(host, "indeed.com") &&
		(strings.Contains(path, "/viewjob") || strings.Contains(path, "/job/") || strings.Contains(u.RawQuery, "jk=")):
		return PlatformIndeed
	case strings.Contains(host, "greenhouse.io"):
		return PlatformGreenhouse
	case strings.Contains(host, "lever.co"):
		return PlatformLever
	case strings.Contains(host, "workday.com") || strings.Contains(host, "myworkdayjobs.com"):
		return PlatformWorkday
	}

	return PlatformUnknown
}

// DetectPlatformString parses rawURL and detects its platform.
func DetectPlatformString(rawURL string) Platform {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PlatformUnknown
	}
	return DetectPlatform(u)
}

// boardSlug returns the first path segment, which Greenhouse and Lever use
// for the company board name.
func boardSlug(u *url.URL) string {
	if u == nil {
		return ""
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	slug, _, _ := strings.Cut(path, "/")
	if slug == "embed" {
		// boards.greenhouse.io/embed/job_app?for=<slug>
		return u.Query().Get("for")
	}
	return slug
}

// workdayTenant returns the tenant subdomain of a Workday host such as
// acme.wd5.myworkdayjobs.com.
func workdayTenant(u *url.URL) string {
	if u == nil {
		return ""
	}
	tenant, _, found := strings.Cut(strings.ToLower(u.Hostname()), ".")
	if !found || tenant == "www" {
		return ""
	}
	return tenant
}
