package extract

import (
	"errors"
	"fmt"
)

// ErrNoJobData is returned by callers that need an error when the job
// cascade finds nothing. ExtractJob itself reports a miss as nil.
var ErrNoJobData = errors.New("no job data found on this page")

// ErrElementNotFound is returned by a Surface when a selector matches nothing.
var ErrElementNotFound = errors.New("element not found")

// PageError represents a failure to build a Page.
type PageError struct {
	URL     string
	Message string
	Cause   error
}

func (e *PageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("page %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("page %s: %s", e.URL, e.Message)
}

func (e *PageError) Unwrap() error {
	return e.Cause
}
