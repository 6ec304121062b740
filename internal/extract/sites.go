package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// siteParsers maps platforms to their dedicated parsers. Each parser
// applies its own acceptance rule and returns nil on a miss.
var siteParsers = map[Platform]func(*Page) *JobRecord{
	PlatformLinkedIn:   parseLinkedInJob,
	PlatformIndeed:     parseIndeedJob,
	PlatformGreenhouse: parseGreenhouseJob,
	PlatformLever:      parseLeverJob,
	PlatformWorkday:    parseWorkdayJob,
}

func extractSiteSpecific(p *Page) *JobRecord {
	parse, ok := siteParsers[DetectPlatform(p.URL)]
	if !ok {
		return nil
	}
	return parse(p)
}

var (
	linkedInTitleSelectors = []string{
		".job-details-jobs-unified-top-card__job-title",
		".jobs-unified-top-card__job-title",
		"h1.t-24",
		`h1[class*="job-title"]`,
		".jobs-details-top-card__job-title",
		"h2.t-24",
	}
	linkedInCompanySelectors = []string{
		".job-details-jobs-unified-top-card__company-name",
		".jobs-unified-top-card__company-name",
		".jobs-unified-top-card__subtitle-primary-grouping a",
		`a[data-tracking-control-name="public_jobs_topcard-org-name"]`,
		".topcard__org-name-link",
		".jobs-details-top-card__company-url",
	}
	linkedInSalarySelectors = []string{
		".job-details-jobs-unified-top-card__job-insight",
		".jobs-unified-top-card__job-insight",
		`span[class*="salary"]`,
		".compensation",
		"li.jobs-unified-top-card__job-insight",
	}

	cityStateLine    = regexp.MustCompile(`^[A-Za-z\s]+,\s*[A-Z]{2}`)
	commaPairLine    = regexp.MustCompile(`[A-Za-z\s]+,\s*[A-Za-z\s]+`)
	bulletNoise      = regexp.MustCompile(`(?i)^(full-time|part-time|contract|on-site|remote|hybrid|reposted|ago|people|clicked)$`)
	bodyLocation     = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*,\s*[A-Z]{2}(?:\s+\([A-Z][a-z\-]+\))?)`)
	salaryIndicators = regexp.MustCompile(`(?i)\$|USD|EUR|GBP|salary|/yr|/year|/hour|/hr|k-|compensation`)
	stateAbbrev      = regexp.MustCompile(`\b[A-Z]{2}\b`)
	insightSalary    = regexp.MustCompile(`(?i)\$|salary|compensation`)
)

func parseLinkedInJob(p *Page) *JobRecord {
	job := newJobRecord(p)
	job.JobTitle = p.FirstText(linkedInTitleSelectors...)
	job.Company = p.FirstText(linkedInCompanySelectors...)
	job.Location = linkedInLocation(p)

	for _, sel := range linkedInSalarySelectors {
		p.Doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if salaryIndicators.MatchString(text) {
				job.Salary = text
				return false
			}
			return true
		})
		if job.Salary != "" {
			break
		}
	}

	p.Doc.Find("ul.jobs-unified-top-card__job-insight-view-model-secondary li").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if job.Location == "" && (strings.Contains(text, ",") || stateAbbrev.MatchString(text)) {
			job.Location = text
		}
		if job.Salary == "" && insightSalary.MatchString(text) {
			job.Salary = text
		}
	})

	job.JobDescription = description(p.Doc.Find(".jobs-description__content, .jobs-description, .jobs-box__html-content"))

	if workplace := p.First(".jobs-unified-top-card__workplace-type"); workplace.Length() > 0 {
		job.Notes = "Workplace Type: " + strings.TrimSpace(workplace.Text())
	}

	if job.JobTitle == "" || job.Company == "" {
		return nil
	}
	return job
}

// linkedInLocation tries the top card description lines, then the top card
// bullets, then a "City, ST" pattern anywhere in the body.
func linkedInLocation(p *Page) string {
	container := p.First(".jobs-unified-top-card__primary-description, .jobs-unified-top-card__primary-description-without-tagline")
	if container.Length() > 0 {
		for _, line := range strings.Split(strings.TrimSpace(container.Text()), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if cityStateLine.MatchString(line) || commaPairLine.MatchString(line) {
				return line
			}
		}
	}

	var location string
	p.Doc.Find(".jobs-unified-top-card__bullet").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if n := runeLen(text); n > 3 && n < 100 && !bulletNoise.MatchString(strings.ToLower(text)) {
			location = text
			return false
		}
		return true
	})
	if location != "" {
		return location
	}

	if m := bodyLocation.FindStringSubmatch(p.BodyText()); m != nil {
		if candidate := strings.TrimSpace(m[1]); runeLen(candidate) < 50 {
			return candidate
		}
	}
	return ""
}

func parseIndeedJob(p *Page) *JobRecord {
	job := newJobRecord(p)
	job.JobTitle = p.Text(`.jobsearch-JobInfoHeader-title, h1.jobsearch-JobInfoHeader-title-container, h1[class*="jobTitle"]`)
	job.Company = p.Text(`[data-company-name], .jobsearch-InlineCompanyRating-companyHeader a, [data-testid="inlineHeader-companyName"]`)
	if job.Company == "" {
		job.Company = p.Text(".css-1cxc9zk, .jobsearch-CompanyInfoContainer a")
	}
	job.Location = p.Text(`[data-testid="inlineHeader-companyLocation"], .jobsearch-JobInfoHeader-subtitle-location, .jobsearch-JobInfoHeader-subtitle div`)

	salary := p.Text(`#salaryInfoAndJobType, .jobsearch-JobMetadataHeader-item, [data-testid="jobsearch-JobMetadataHeader-salary"]`)
	lower := strings.ToLower(salary)
	if strings.Contains(salary, "$") || strings.Contains(lower, "hour") || strings.Contains(lower, "year") {
		job.Salary = salary
	}

	job.JobDescription = description(p.Doc.Find(`#jobDescriptionText, .jobsearch-jobDescriptionText, [id*="jobDescription"]`))

	if jobType := p.First(`.jobsearch-JobMetadataHeader-item, [data-testid="job-type"]`); jobType.Length() > 0 {
		raw := jobType.Text()
		text := strings.TrimSpace(raw)
		if !strings.Contains(raw, "$") && text != "" && runeLen(text) < 50 {
			job.Notes = "Job Type: " + text
		}
	}

	if job.JobTitle == "" || job.Company == "" {
		return nil
	}
	return job
}

func parseGreenhouseJob(p *Page) *JobRecord {
	job := newJobRecord(p)
	job.JobTitle = p.FirstText(".app-title", ".job__title h1", "h1.section-header", "h1")
	job.Company = strings.TrimPrefix(p.FirstText(".company-name", ".job__company"), "at ")
	if job.Company == "" {
		job.Company = companyFromSlug(boardSlug(p.URL))
	}
	job.Location = p.FirstText(".job__location", "#header .location", ".location")
	job.JobDescription = description(p.Doc.Find(".job__description.body, .job__description, #content"))
	job.Notes = "Source: Greenhouse"

	if job.JobTitle == "" {
		return nil
	}
	return job
}

func parseLeverJob(p *Page) *JobRecord {
	job := newJobRecord(p)
	job.JobTitle = p.FirstText(".posting-headline h2", "h2")
	if logo := p.First(".main-header-logo img"); logo.Length() > 0 {
		job.Company = strings.TrimSpace(strings.TrimSuffix(logo.AttrOr("alt", ""), " logo"))
	}
	if job.Company == "" {
		job.Company = companyFromSlug(boardSlug(p.URL))
	}
	job.Location = p.FirstText(".posting-categories .location", ".posting-category.location")
	job.JobDescription = description(p.Doc.Find(`[data-qa="job-description"], .section-wrapper.page-full-width, .posting-description`))
	if commitment := p.Text(".posting-categories .commitment"); commitment != "" {
		job.Notes = "Commitment: " + commitment
	}

	if job.JobTitle == "" {
		return nil
	}
	return job
}

func parseWorkdayJob(p *Page) *JobRecord {
	job := newJobRecord(p)
	job.JobTitle = p.FirstText(`[data-automation-id="jobPostingHeader"]`, "h2", "h1")
	job.Company = companyFromSlug(workdayTenant(p.URL))
	job.Location = p.FirstText(`[data-automation-id="locations"] dd`, `[data-automation-id="locations"]`)
	job.JobDescription = description(p.Doc.Find(`[data-automation-id="jobPostingDescription"], [data-automation-id="jobDescription"]`))
	if timeType := p.Text(`[data-automation-id="time"] dd`); timeType != "" {
		job.Notes = "Type: " + timeType
	}

	if job.JobTitle == "" {
		return nil
	}
	return job
}

// companyFromSlug turns a board slug such as "acme-robotics" into
// "Acme Robotics".
func companyFromSlug(slug string) string {
	slug = strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
	if slug == "" {
		return ""
	}
	return cases.Title(language.English).String(slug)
}
