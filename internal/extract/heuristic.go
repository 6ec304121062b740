package extract

import (
	"strings"
)

var (
	heuristicTitleSelectors = []string{
		`h1[class*="job-title"]`,
		`h1[class*="title"]`,
		`[data-qa="job-title"]`,
		".app-title",
		".job-title",
		"h1.position-title",
		"h1",
		`[class*="JobTitle"]`,
	}
	heuristicCompanySelectors = []string{
		`[class*="company-name"]`,
		`[data-qa="company-name"]`,
		".company",
		`[class*="CompanyName"]`,
		`a[class*="company"]`,
		".employer",
	}
	heuristicLocationSelectors = []string{
		`[class*="location"]`,
		`[data-qa="location"]`,
		".job-location",
		`[class*="JobLocation"]`,
	}
	heuristicDescriptionSelectors = []string{
		`[class*="description"]`,
		`[data-qa="job-description"]`,
		".job-description",
		"#job-description",
		`[id*="description"]`,
		".content",
	}
)

// extractHeuristic applies ranked selector lists per field. Only the first
// element of each selector is considered, and it must pass the field's
// length check. The record is accepted with a title alone.
func extractHeuristic(p *Page) *JobRecord {
	job := newJobRecord(p)

	job.JobTitle = firstPassing(p, heuristicTitleSelectors, func(s string) bool {
		return runeLen(s) < 200
	})
	job.Company = firstPassing(p, heuristicCompanySelectors, func(s string) bool {
		return runeLen(s) < 100
	})
	job.Location = firstPassing(p, heuristicLocationSelectors, func(s string) bool {
		return runeLen(s) < 150 && (strings.Contains(s, ",") || runeLen(s) > 5)
	})

	for _, sel := range heuristicDescriptionSelectors {
		el := p.First(sel)
		if el.Length() > 0 && runeLen(strings.TrimSpace(el.Text())) > 100 {
			job.JobDescription = description(el)
			break
		}
	}

	job.Notes = "Source: " + strings.Replace(p.Host(), "www.", "", 1)

	if job.JobTitle == "" {
		return nil
	}
	return job
}

// firstPassing returns the trimmed text of the first selector whose first
// element is non-empty and passes ok.
func firstPassing(p *Page, selectors []string, ok func(string) bool) string {
	for _, sel := range selectors {
		text := p.Text(sel)
		if text != "" && ok(text) {
			return text
		}
	}
	return ""
}
