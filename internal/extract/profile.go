package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors shared between the static profile extraction and the modal
// scrape.
const (
	ModalSelector        = ".artdeco-modal"
	ModalContentSelector = ".artdeco-modal__content"
	ModalDismissSelector = ".artdeco-modal__dismiss"
	mutualLinkSelector   = `a[href*="facetNetwork"]`
	mutualSectionLink    = `[data-test-id="mutual-connections"] a`
)

var profileNameFallbacks = []string{
	`h1[data-anonymize="person-name"]`,
	".pv-top-card--list li:first-child",
	".text-heading-xlarge",
}

// ConnectionStrategy reads mutual connection names from a page. It returns
// an empty slice when its layout is absent.
type ConnectionStrategy func(*Page) []string

// ConnectionStrategies are tried in order; the first non-empty result wins.
var ConnectionStrategies = []ConnectionStrategy{
	modalConnections,
	searchCardConnections,
	inlineSummaryConnections,
	sharedCardConnections,
}

// ExtractProfile reads the profile visible on the page without interacting
// with it.
func ExtractProfile(p *Page) *ProfileRecord {
	return &ProfileRecord{
		LinkedInURL:       ProfileURL(p),
		Name:              profileName(p),
		Headline:          p.Text(".text-body-medium.break-words"),
		MutualConnections: MutualConnections(p),
	}
}

// ProfileURL prefers the canonical link and falls back to the page URL
// without query or fragment.
func ProfileURL(p *Page) string {
	if p.URL == nil {
		return ""
	}
	if href, ok := p.First(`link[rel="canonical"]`).Attr("href"); ok && strings.TrimSpace(href) != "" {
		ref, err := p.URL.Parse(strings.TrimSpace(href))
		if err == nil {
			return ref.String()
		}
	}
	u := *p.URL
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

func profileName(p *Page) string {
	if el := p.First("h1.text-heading-xlarge"); el.Length() > 0 {
		return strings.TrimSpace(el.Text())
	}
	for _, sel := range profileNameFallbacks {
		if el := p.First(sel); el.Length() > 0 {
			return strings.TrimSpace(el.Text())
		}
	}
	return ""
}

// MutualConnections runs ConnectionStrategies and returns the first
// non-empty list. Duplicates are removed by exact string only; callers that
// need person-level dedup go through names.Merge.
func MutualConnections(p *Page) []string {
	for _, strategy := range ConnectionStrategies {
		if conns := strategy(p); len(conns) > 0 {
			return conns
		}
	}
	return []string{}
}

func modalConnections(p *Page) []string {
	return collectTexts(p.Doc.Find(`.artdeco-modal [data-view-name="profile-component-entity"] .entity-result__title-text a span[aria-hidden="true"]`))
}

func searchCardConnections(p *Page) []string {
	return collectTexts(p.Doc.Find(`.entity-result__title-text a span[aria-hidden="true"]`))
}

var inlineNames = regexp.MustCompile(`([A-Z][a-z]+ [A-Z][a-z]+(?:, [A-Z][a-z]+ [A-Z][a-z]+)*)`)

// inlineSummaryConnections parses the truncated "Name, Name and N others"
// summary. It only runs when the summary is collapsed behind a show-more
// button.
func inlineSummaryConnections(p *Page) []string {
	if !p.Has(`[data-field="mutual_connections"] .inline-show-more-text__button--small`) {
		return []string{}
	}
	container := p.First(`[data-field="mutual_connections"]`)
	m := inlineNames.FindStringSubmatch(container.Text())
	if m == nil {
		return []string{}
	}

	conns := []string{}
	for _, name := range strings.Split(m[1], ", ") {
		conns = appendUnique(conns, strings.TrimSpace(name))
	}
	return conns
}

func sharedCardConnections(p *Page) []string {
	conns := []string{}
	p.Doc.Find(".pv-shared-connections-card a.app-aware-link").Each(func(_ int, link *goquery.Selection) {
		span := link.Find(`span[aria-hidden="true"]`).First()
		if span.Length() > 0 {
			conns = appendUnique(conns, strings.TrimSpace(span.Text()))
		}
	})
	return conns
}

func collectTexts(sel *goquery.Selection) []string {
	conns := []string{}
	sel.Each(func(_ int, s *goquery.Selection) {
		conns = appendUnique(conns, strings.TrimSpace(s.Text()))
	})
	return conns
}

// appendUnique appends name unless it is empty or already present verbatim.
func appendUnique(list []string, name string) []string {
	if name == "" {
		return list
	}
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}

// mutualOpener locates the control that opens the connections modal and
// returns the selector and index to activate.
func mutualOpener(p *Page) (string, int, bool) {
	index := -1
	p.Doc.Find(mutualLinkSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(s.Text()), "mutual") {
			index = i
			return false
		}
		return true
	})
	if index >= 0 {
		return mutualLinkSelector, index, true
	}
	if p.Has(mutualSectionLink) {
		return mutualSectionLink, 0, true
	}
	return "", 0, false
}
