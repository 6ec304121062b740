package server

import (
	"log"
	"net/http"

	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/names"
	"github.com/jonathan/job-tracker/internal/types"
)

// handleCreateContact adds a contact for the default user. Mutual
// connections are deduplicated by normalized name before storage.
func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req types.CreateContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, envelopeSuccess, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, envelopeSuccess, err)
		return
	}

	contact, err := s.store.CreateContact(r.Context(), &db.ContactCreateInput{
		UserID:            s.extension.DefaultUserID,
		Name:              req.Name,
		Title:             req.Title,
		Company:           req.Company,
		LinkedInURL:       req.LinkedInURL,
		Email:             req.Email,
		Phone:             req.Phone,
		Notes:             req.Notes,
		Source:            req.Source,
		MutualConnections: names.Dedupe(req.MutualConnections),
	})
	if err != nil {
		s.fail(w, envelopeSuccess, &ErrStorage{Message: "Failed to create contact", Cause: err})
		return
	}

	log.Printf("[contacts] Created contact %s (%d mutual connections)", contact.Name, len(contact.MutualConnections))
	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Contact created successfully",
		"data":    contact,
	})
}
