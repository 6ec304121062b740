// Package server provides the HTTP API used by the browser extension.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/job-tracker/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Message
}

// ErrContactNotFound indicates no contact matches a LinkedIn URL
type ErrContactNotFound struct {
	LinkedInURL string
}

func (e *ErrContactNotFound) Error() string {
	return "Contact not found with that LinkedIn URL"
}

// ErrStorage wraps a database failure. Only Message reaches the client.
type ErrStorage struct {
	Message string
	Cause   error
}

func (e *ErrStorage) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ErrStorage) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		field      *types.FieldError
		notFound   *ErrContactNotFound
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &field):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text safe to return to clients.
func publicMessage(err error) string {
	var storage *ErrStorage
	switch {
	case errors.As(err, &storage):
		return storage.Message
	case HTTPStatus(err) == http.StatusInternalServerError:
		return "Internal server error"
	default:
		return err.Error()
	}
}
