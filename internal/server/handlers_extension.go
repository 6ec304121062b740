package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/extract"
	"github.com/jonathan/job-tracker/internal/linkedin"
	"github.com/jonathan/job-tracker/internal/names"
	"github.com/jonathan/job-tracker/internal/server/middleware"
	"github.com/jonathan/job-tracker/internal/types"
)

// maxBodyBytes bounds request bodies; extract requests carry whole pages.
const maxBodyBytes = 5 << 20

// decodeJSON reads a JSON body into v. Malformed bodies are validation
// errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Message: "Request body too large"}
		}
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Message: "Request body is required"}
		}
		return &ErrValidation{Message: "Invalid JSON body"}
	}
	return nil
}

// handleLookupContact reports whether the default user has a contact for a
// LinkedIn profile.
func (s *Server) handleLookupContact(w http.ResponseWriter, r *http.Request) {
	var req types.LookupContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, envelopeFound, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, envelopeFound, err)
		return
	}

	contact, err := s.findContact(r, req.LinkedInURL)
	if err != nil {
		s.fail(w, envelopeFound, err)
		return
	}
	if contact == nil {
		s.jsonResponse(w, http.StatusOK, types.LookupContactResponse{Found: false})
		return
	}

	s.jsonResponse(w, http.StatusOK, types.LookupContactResponse{
		Found: true,
		Contact: &types.ContactSummary{
			ID:                contact.ID,
			Name:              contact.Name,
			Title:             contact.Title,
			Company:           contact.Company,
			LinkedIn:          contact.LinkedInURL,
			MutualConnections: contact.MutualConnections,
		},
	})
}

// handleSyncConnections merges scraped mutual connections into a stored
// contact. The merge runs on the row as locked by the store, so concurrent
// syncs for one contact cannot drop each other's additions.
func (s *Server) handleSyncConnections(w http.ResponseWriter, r *http.Request) {
	var req types.SyncConnectionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, envelopeSuccess, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, envelopeSuccess, err)
		return
	}

	contact, err := s.findContact(r, req.LinkedInURL)
	if err != nil {
		s.fail(w, envelopeSuccess, err)
		return
	}
	if contact == nil {
		s.fail(w, envelopeSuccess, &ErrContactNotFound{LinkedInURL: req.LinkedInURL})
		return
	}

	var result names.MergeResult
	updated, err := s.store.UpdateMutualConnections(r.Context(), contact.ID, func(existing []string) ([]string, bool) {
		result = names.Merge(existing, req.Connections())
		return result.Merged, len(result.Added) > 0
	})
	if err != nil {
		s.fail(w, envelopeSuccess, &ErrStorage{Message: "Failed to update contact", Cause: err})
		return
	}
	if updated == nil {
		s.fail(w, envelopeSuccess, &ErrContactNotFound{LinkedInURL: req.LinkedInURL})
		return
	}

	log.Printf("[sync] Synced %d connections for %s (%d new, %d existing)",
		len(req.Connections()), updated.Name, len(result.Added), len(result.AlreadyExisted))

	s.jsonResponse(w, http.StatusOK, types.SyncConnectionsResponse{
		Success:          true,
		ContactID:        updated.ID,
		ContactName:      updated.Name,
		Added:            result.Added,
		AlreadyExisted:   result.AlreadyExisted,
		TotalConnections: len(updated.MutualConnections),
	})
}

// findContact looks up the default user's contact by profile path or
// username. A miss is (nil, nil).
func (s *Server) findContact(r *http.Request, linkedInURL string) (*db.Contact, error) {
	keys := linkedin.LookupKeys(linkedInURL)
	if len(keys) == 0 {
		return nil, nil
	}
	contact, err := s.store.FindContactByLinkedIn(r.Context(), s.extension.DefaultUserID, keys)
	if err != nil {
		return nil, &ErrStorage{Message: "Database error", Cause: err}
	}
	return contact, nil
}

// handleCreateJob saves a job record for the authenticated user.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, envelopeSuccess, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.CreateJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, envelopeSuccess, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, envelopeSuccess, err)
		return
	}

	status := req.Status
	if status == "" {
		status = extract.StatusInterested
	}
	job, err := s.store.CreateJob(r.Context(), &db.JobCreateInput{
		UserID:         userID,
		JobTitle:       req.JobTitle,
		Company:        req.Company,
		Location:       req.Location,
		Salary:         req.Salary,
		JobURL:         req.JobURL,
		Status:         status,
		AppliedDate:    req.Applied(),
		JobDescription: req.JobDescription,
		Notes:          req.Notes,
	})
	if err != nil {
		s.fail(w, envelopeSuccess, &ErrStorage{Message: "Failed to create job", Cause: err})
		return
	}

	log.Printf("[jobs] Created job %s: %s at %s", job.ID, job.JobTitle, job.Company)
	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"success": true,
		"job":     job,
	})
}

// handleListJobs returns the authenticated user's most recent jobs.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, envelopeNone, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := db.DefaultJobListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			s.fail(w, envelopeNone, &ErrValidation{Field: "limit", Message: "limit must be between 1 and 200"})
			return
		}
		limit = n
	}

	jobs, err := s.store.ListJobsByUser(r.Context(), userID, limit)
	if err != nil {
		s.fail(w, envelopeNone, &ErrStorage{Message: "Failed to list jobs", Cause: err})
		return
	}
	if jobs == nil {
		jobs = []db.Job{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// handleExtract runs the job or profile cascade over HTML the caller sends.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req types.ExtractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, envelopeFound, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, envelopeFound, err)
		return
	}

	page, err := extract.NewPageFromHTML(req.URL, req.HTML)
	if err != nil {
		s.fail(w, envelopeFound, &ErrValidation{Field: "html", Message: fmt.Sprintf("failed to parse page: %v", err)})
		return
	}

	if req.Kind == types.KindProfile {
		profile := extract.ExtractProfile(page)
		s.jsonResponse(w, http.StatusOK, map[string]any{
			"found":   profile.Name != "" || len(profile.MutualConnections) > 0,
			"profile": profile,
		})
		return
	}

	job, source := extract.ExtractJobWithSource(page)
	if job == nil {
		s.jsonResponse(w, http.StatusOK, map[string]any{
			"found": false,
			"error": "No job data found on this page",
		})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"found":  true,
		"source": source,
		"job":    job,
	})
}
