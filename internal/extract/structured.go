package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractStructured reads the first schema.org JobPosting embedded as
// JSON-LD. Blocks that fail to parse are skipped. The record is accepted
// only with both a title and a hiring organization name; pages without an
// organization fall through to the heuristic parser.
func extractStructured(p *Page) *JobRecord {
	var job *JobRecord
	p.Doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		posting := findJobPosting(data)
		if posting == nil {
			return true
		}
		job = jobFromPosting(p, posting)
		return false
	})

	if job == nil || job.JobTitle == "" || job.Company == "" {
		return nil
	}
	return job
}

// findJobPosting accepts a single object, an array (first JobPosting
// entry) or an @graph container.
func findJobPosting(data any) map[string]any {
	switch v := data.(type) {
	case map[string]any:
		if isJobPosting(v) {
			return v
		}
		if graph, ok := v["@graph"].([]any); ok {
			return findJobPosting(graph)
		}
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok && isJobPosting(obj) {
				return obj
			}
		}
	}
	return nil
}

func isJobPosting(obj map[string]any) bool {
	switch t := obj["@type"].(type) {
	case string:
		return t == "JobPosting"
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func jobFromPosting(p *Page, posting map[string]any) *JobRecord {
	job := newJobRecord(p)
	job.JobTitle = strings.TrimSpace(stringField(posting, "title"))
	job.Company = strings.TrimSpace(stringField(objectField(posting, "hiringOrganization"), "name"))
	job.Location = postingLocation(posting["jobLocation"])
	job.Salary = postingSalary(posting["baseSalary"])

	if desc := stringField(posting, "description"); desc != "" {
		job.JobDescription = truncate(htmlToText(desc), MaxDescriptionLength)
	}

	if employment := joinStrings(posting["employmentType"]); employment != "" {
		job.Notes = "Type: " + employment
	}
	return job
}

func postingLocation(v any) string {
	switch loc := v.(type) {
	case string:
		return strings.TrimSpace(loc)
	case []any:
		if len(loc) > 0 {
			return postingLocation(loc[0])
		}
	case map[string]any:
		address := objectField(loc, "address")
		if locality := stringField(address, "addressLocality"); locality != "" {
			return locality
		}
		return stringField(address, "addressRegion")
	}
	return ""
}

// postingSalary formats baseSalary, which may be a plain string, a
// MonetaryAmount with a scalar value, or a MonetaryAmount wrapping a
// QuantitativeValue with either value or minValue/maxValue.
func postingSalary(v any) string {
	switch salary := v.(type) {
	case string:
		return strings.TrimSpace(salary)
	case float64:
		return formatNumber(salary)
	case map[string]any:
		amount := ""
		unit := ""
		switch value := salary["value"].(type) {
		case map[string]any:
			amount = scalarString(value["value"])
			if amount == "" {
				low, high := scalarString(value["minValue"]), scalarString(value["maxValue"])
				switch {
				case low != "" && high != "":
					amount = low + "-" + high
				case low != "":
					amount = low
				default:
					amount = high
				}
			}
			unit = stringField(value, "unitText")
		default:
			amount = scalarString(value)
		}
		if amount == "" {
			return ""
		}
		if currency := stringField(salary, "currency"); currency != "" {
			amount = currency + " " + amount
		}
		if unit != "" {
			amount += "/" + strings.ToLower(unit)
		}
		return amount
	}
	return ""
}

// htmlToText strips markup that sites commonly embed in JSON-LD
// descriptions.
func htmlToText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(blockText(doc.Find("body")))
}

func objectField(obj map[string]any, key string) map[string]any {
	if obj == nil {
		return nil
	}
	m, _ := obj[key].(map[string]any)
	return m
}

func stringField(obj map[string]any, key string) string {
	if obj == nil {
		return ""
	}
	s, _ := obj[key].(string)
	return s
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return formatNumber(x)
	}
	return ""
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func joinStrings(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}
