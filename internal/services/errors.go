package services

import (
	"errors"

	"github.com/markdave123-py/reviewdesk/internal/core"
)

var (
	// ErrNotFound is returned when the addressed review does not exist.
	ErrNotFound = core.ErrNotFound
	// ErrPersistence wraps any storage failure. Callers report it as a generic error.
	ErrPersistence = errors.New("persistence failure")
	// ErrExportDisabled means no object storage is configured.
	ErrExportDisabled = errors.New("export is not configured")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthDisabled       = errors.New("admin authentication is not configured")
)

// ValidationError reports bad user input. Nothing is generated or stored.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
