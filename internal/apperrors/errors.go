package apperrors

import "fmt"

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewShowNotFoundError creates a specific error for when the metadata provider has no match for a title.
func NewShowNotFoundError(title string) *ErrNotFound {
	return &ErrNotFound{
		Resource: "show",
		ID:       title,
	}
}

// ErrSubtitleResourceNotFound is returned when the subtitle URL returns HTTP 404.
type ErrSubtitleResourceNotFound struct {
	URL string
}

// Error implements the error interface.
func (e *ErrSubtitleResourceNotFound) Error() string {
	return fmt.Sprintf("subtitle resource not found at URL: %s", e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ErrSubtitleResourceNotFound) Is(target error) bool {
	_, ok := target.(*ErrSubtitleResourceNotFound)
	return ok
}

// ErrDownloadFailed is returned when the download tool exits with a non-zero status.
type ErrDownloadFailed struct {
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *ErrDownloadFailed) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("download tool failed (exit %d)", e.ExitCode)
	}
	return fmt.Sprintf("download tool failed: %v", e.Err)
}

// Unwrap returns the underlying process error.
func (e *ErrDownloadFailed) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrDownloadFailed) Is(target error) bool {
	_, ok := target.(*ErrDownloadFailed)
	return ok
}

// ErrInvalidRequest is returned when a request body fails validation.
type ErrInvalidRequest struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ErrInvalidRequest) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("bad request: %s", e.Reason)
	}
	return fmt.Sprintf("%s %s", e.Reason, e.Field)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidRequest) Is(target error) bool {
	_, ok := target.(*ErrInvalidRequest)
	return ok
}

// NewMissingFieldError creates an ErrInvalidRequest for a required field that was empty.
func NewMissingFieldError(field string) *ErrInvalidRequest {
	return &ErrInvalidRequest{Field: field, Reason: "missing"}
}
