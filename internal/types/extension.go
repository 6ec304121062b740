package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LookupContactRequest is the body of POST /api/extension/lookup-contact.
type LookupContactRequest struct {
	LinkedInURL string `json:"linkedin_url" validate:"required"`
}

// Validate validates the LookupContactRequest.
func (r *LookupContactRequest) Validate() error {
	r.LinkedInURL = strings.TrimSpace(r.LinkedInURL)
	return validateStruct(r)
}

// ContactSummary is the contact shape returned by a lookup.
type ContactSummary struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Title             *string   `json:"title"`
	Company           *string   `json:"company"`
	LinkedIn          *string   `json:"linkedin"`
	MutualConnections []string  `json:"mutual_connections"`
}

// LookupContactResponse reports whether a contact exists for a profile.
type LookupContactResponse struct {
	Found   bool            `json:"found"`
	Contact *ContactSummary `json:"contact,omitempty"`
}

// ErrConnectionsNotArray is returned when mutual_connections is missing or
// is not a JSON array of strings.
var ErrConnectionsNotArray = &FieldError{Field: "mutual_connections", Message: "mutual_connections must be an array"}

// SyncConnectionsRequest is the body of POST /api/extension/sync-connections.
// MutualConnections is kept raw so a non-array value can be reported
// distinctly from malformed JSON.
type SyncConnectionsRequest struct {
	LinkedInURL       string          `json:"linkedin_url" validate:"required"`
	MutualConnections json.RawMessage `json:"mutual_connections"`

	connections []string
}

// Validate validates the SyncConnectionsRequest and decodes the names.
func (r *SyncConnectionsRequest) Validate() error {
	r.LinkedInURL = strings.TrimSpace(r.LinkedInURL)
	if err := validateStruct(r); err != nil {
		return err
	}

	raw := bytes.TrimSpace(r.MutualConnections)
	if len(raw) == 0 || raw[0] != '[' {
		return ErrConnectionsNotArray
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return &FieldError{Field: "mutual_connections", Message: "mutual_connections must be an array of strings"}
	}
	r.connections = names
	return nil
}

// Connections returns the names decoded by Validate.
func (r *SyncConnectionsRequest) Connections() []string {
	if r.connections == nil {
		return []string{}
	}
	return r.connections
}

// SyncConnectionsResponse is the result of a successful sync.
type SyncConnectionsResponse struct {
	Success          bool      `json:"success"`
	ContactID        uuid.UUID `json:"contact_id"`
	ContactName      string    `json:"contact_name"`
	Added            []string  `json:"added"`
	AlreadyExisted   []string  `json:"already_existed"`
	TotalConnections int       `json:"total_connections"`
}

// CreateJobRequest is the body of POST /api/extension/jobs. Its fields match
// an extracted job record.
type CreateJobRequest struct {
	JobTitle       string `json:"job_title" validate:"required,max=500"`
	Company        string `json:"company" validate:"required,max=300"`
	Location       string `json:"location" validate:"max=300"`
	Salary         string `json:"salary" validate:"max=200"`
	JobURL         string `json:"job_url" validate:"omitempty,url"`
	Status         string `json:"status" validate:"max=50"`
	AppliedDate    string `json:"applied_date" validate:"omitempty,datetime=2006-01-02"`
	JobDescription string `json:"job_description"`
	Notes          string `json:"notes"`
}

// Validate validates the CreateJobRequest.
func (r *CreateJobRequest) Validate() error {
	r.JobTitle = strings.TrimSpace(r.JobTitle)
	r.Company = strings.TrimSpace(r.Company)
	return validateStruct(r)
}

// Applied parses AppliedDate; it is nil when unset.
func (r *CreateJobRequest) Applied() *time.Time {
	if r.AppliedDate == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, r.AppliedDate)
	if err != nil {
		return nil
	}
	return &t
}

// Extraction kinds accepted by POST /api/extension/extract.
const (
	KindJob     = "job"
	KindProfile = "profile"
)

// ExtractRequest asks the server to run an extraction cascade over HTML the
// caller already has.
type ExtractRequest struct {
	URL  string `json:"url" validate:"required,url"`
	HTML string `json:"html" validate:"required"`
	Kind string `json:"kind" validate:"omitempty,oneof=job profile"`
}

// Validate validates the ExtractRequest. An empty kind means job.
func (r *ExtractRequest) Validate() error {
	if r.Kind == "" {
		r.Kind = KindJob
	}
	return validateStruct(r)
}

// NameList is a list of names that also accepts a comma-separated string.
// Blank entries are dropped.
type NameList []string

// UnmarshalJSON accepts an array of strings, a comma-separated string or null.
func (l *NameList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = NameList{}
		return nil
	}

	var parts []string
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parts = strings.Split(s, ",")
	} else if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}

	out := NameList{}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*l = out
	return nil
}

// CreateContactRequest is the body of POST /api/contacts.
type CreateContactRequest struct {
	Name              string   `json:"name" validate:"required,max=200"`
	Title             string   `json:"job_title" validate:"max=300"`
	Company           string   `json:"company" validate:"max=300"`
	Email             string   `json:"email" validate:"omitempty,email"`
	Phone             string   `json:"phone" validate:"max=50"`
	LinkedInURL       string   `json:"linkedin_url" validate:"max=500"`
	Notes             string   `json:"notes"`
	Source            string   `json:"source" validate:"max=100"`
	MutualConnections NameList `json:"mutual_connections"`
}

// Validate validates the CreateContactRequest.
func (r *CreateContactRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return validateStruct(r)
}
