package extract

// Strategy names reported by ExtractJobWithSource.
const (
	StrategySite       = "site"
	StrategyStructured = "structured"
	StrategyHeuristic  = "heuristic"
)

// JobStrategy is one stage of the job cascade. It returns nil when the page
// does not yield an acceptable record.
type JobStrategy struct {
	Name    string
	Extract func(*Page) *JobRecord
}

// DefaultJobStrategies is the cascade order: site-specific parser, JSON-LD
// structured data, selector heuristics.
func DefaultJobStrategies() []JobStrategy {
	return []JobStrategy{
		{Name: StrategySite, Extract: extractSiteSpecific},
		{Name: StrategyStructured, Extract: extractStructured},
		{Name: StrategyHeuristic, Extract: extractHeuristic},
	}
}

// ExtractJob runs the default cascade. It returns nil when no strategy
// finds job data.
func ExtractJob(p *Page) *JobRecord {
	job, _ := ExtractJobWithSource(p)
	return job
}

// ExtractJobWithSource runs the default cascade and also reports which
// strategy produced the record.
func ExtractJobWithSource(p *Page) (*JobRecord, string) {
	return RunJobStrategies(p, DefaultJobStrategies())
}

// RunJobStrategies tries strategies in order; the first non-nil record wins.
func RunJobStrategies(p *Page, strategies []JobStrategy) (*JobRecord, string) {
	if p == nil || p.Doc == nil {
		return nil, ""
	}
	for _, s := range strategies {
		if job := s.Extract(p); job != nil {
			return job, s.Name
		}
	}
	return nil, ""
}
