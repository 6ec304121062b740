// Package extract pulls job postings and LinkedIn profile data out of
// rendered HTML pages. Job pages go through an ordered cascade of
// strategies (site-specific parser, JSON-LD structured data, selector
// heuristics) where the first acceptable record wins.
package extract

import (
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// MaxDescriptionLength caps job descriptions, in characters.
const MaxDescriptionLength = 2000

// Page is a read-only view of a rendered document and the URL it was
// loaded from.
type Page struct {
	URL *url.URL
	Doc *goquery.Document
}

// NewPage parses HTML from r. rawURL may be empty when the origin is unknown.
func NewPage(rawURL string, r io.Reader) (*Page, error) {
	u := &url.URL{}
	if rawURL != "" {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return nil, &PageError{URL: rawURL, Message: "invalid URL", Cause: err}
		}
		u = parsed
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &PageError{URL: rawURL, Message: "failed to parse HTML", Cause: err}
	}
	doc.Url = u

	return &Page{URL: u, Doc: doc}, nil
}

// NewPageFromHTML is NewPage over an in-memory document.
func NewPageFromHTML(rawURL, body string) (*Page, error) {
	return NewPage(rawURL, strings.NewReader(body))
}

// Host returns the lowercased host name without port.
func (p *Page) Host() string {
	if p.URL == nil {
		return ""
	}
	return strings.ToLower(p.URL.Hostname())
}

// Path returns the URL path.
func (p *Page) Path() string {
	if p.URL == nil {
		return ""
	}
	return p.URL.Path
}

// Href returns the full page URL.
func (p *Page) Href() string {
	if p.URL == nil {
		return ""
	}
	return p.URL.String()
}

// Has reports whether any element matches selector.
func (p *Page) Has(selector string) bool {
	return p.Doc.Find(selector).Length() > 0
}

// First returns the first element matching selector in document order.
func (p *Page) First(selector string) *goquery.Selection {
	return p.Doc.Find(selector).First()
}

// Text returns the trimmed text of the first element matching selector, or
// "" when nothing matches.
func (p *Page) Text(selector string) string {
	return strings.TrimSpace(p.First(selector).Text())
}

// FirstText tries selectors in order and returns the first non-empty text.
func (p *Page) FirstText(selectors ...string) string {
	for _, sel := range selectors {
		if text := p.Text(sel); text != "" {
			return text
		}
	}
	return ""
}

// BodyText returns the text content of the whole body.
func (p *Page) BodyText() string {
	return p.Doc.Find("body").Text()
}

// blockText renders a selection's text with line breaks at block element
// boundaries, the way a browser's innerText would, then drops blank lines.
func blockText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeBlockText(&b, n)
	}
	return cleanWhitespace(b.String())
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "tr": true, "table": true, "header": true,
	"footer": true, "blockquote": true, "pre": true, "dd": true, "dt": true,
}

func writeBlockText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" || n.Data == "noscript" {
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeBlockText(b, c)
	}
	if block {
		b.WriteByte('\n')
	}
}

// cleanWhitespace trims every line and drops the empty ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// truncate shortens s to at most n characters.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// description renders and truncates a description element.
func description(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return truncate(strings.TrimSpace(blockText(sel.First())), MaxDescriptionLength)
}

// runeLen is the character length used by the per-field sanity checks.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
