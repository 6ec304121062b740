package extract

import "encoding/json"

// StatusInterested is the status every extracted job starts with.
const StatusInterested = "interested"

// JobRecord is the fixed-shape result of a job extraction. Empty strings
// mean "no match" and are encoded as JSON null.
type JobRecord struct {
	JobTitle       string
	Company        string
	Location       string
	Salary         string
	JobURL         string
	JobDescription string
	Status         string
	Notes          string
}

type jobRecordJSON struct {
	JobTitle       *string `json:"job_title"`
	Company        *string `json:"company"`
	Location       *string `json:"location"`
	Salary         *string `json:"salary"`
	JobURL         *string `json:"job_url"`
	JobDescription *string `json:"job_description"`
	Status         *string `json:"status"`
	Notes          *string `json:"notes"`
}

// MarshalJSON encodes empty fields as null.
func (r JobRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(jobRecordJSON{
		JobTitle:       nullable(r.JobTitle),
		Company:        nullable(r.Company),
		Location:       nullable(r.Location),
		Salary:         nullable(r.Salary),
		JobURL:         nullable(r.JobURL),
		JobDescription: nullable(r.JobDescription),
		Status:         nullable(r.Status),
		Notes:          nullable(r.Notes),
	})
}

// UnmarshalJSON accepts null or missing fields as empty.
func (r *JobRecord) UnmarshalJSON(data []byte) error {
	var raw jobRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = JobRecord{
		JobTitle:       deref(raw.JobTitle),
		Company:        deref(raw.Company),
		Location:       deref(raw.Location),
		Salary:         deref(raw.Salary),
		JobURL:         deref(raw.JobURL),
		JobDescription: deref(raw.JobDescription),
		Status:         deref(raw.Status),
		Notes:          deref(raw.Notes),
	}
	return nil
}

// ProfileRecord is the result of a profile extraction. MutualConnections is
// never nil.
type ProfileRecord struct {
	LinkedInURL       string
	Name              string
	Headline          string
	MutualConnections []string
}

type profileRecordJSON struct {
	LinkedInURL       *string  `json:"linkedin_url"`
	Name              *string  `json:"name"`
	Headline          *string  `json:"headline"`
	MutualConnections []string `json:"mutual_connections"`
}

// MarshalJSON encodes empty fields as null and a missing list as [].
func (r ProfileRecord) MarshalJSON() ([]byte, error) {
	conns := r.MutualConnections
	if conns == nil {
		conns = []string{}
	}
	return json.Marshal(profileRecordJSON{
		LinkedInURL:       nullable(r.LinkedInURL),
		Name:              nullable(r.Name),
		Headline:          nullable(r.Headline),
		MutualConnections: conns,
	})
}

// UnmarshalJSON accepts null or missing fields as empty.
func (r *ProfileRecord) UnmarshalJSON(data []byte) error {
	var raw profileRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	conns := raw.MutualConnections
	if conns == nil {
		conns = []string{}
	}
	*r = ProfileRecord{
		LinkedInURL:       deref(raw.LinkedInURL),
		Name:              deref(raw.Name),
		Headline:          deref(raw.Headline),
		MutualConnections: conns,
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func newJobRecord(p *Page) *JobRecord {
	return &JobRecord{
		JobURL: p.Href(),
		Status: StatusInterested,
	}
}
