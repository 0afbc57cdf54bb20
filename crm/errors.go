// ABOUTME: Error values returned by CRM service operations
// ABOUTME: Surfaces map these to exit codes, HTTP statuses and MCP errors
package crm

import (
	"errors"
	"fmt"

	"github.com/harperreed/medcrm/backup"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
	ErrForbidden              = errors.New("forbidden")
	ErrUnauthenticated        = errors.New("not logged in")
	ErrInvalidCredentials     = errors.New("invalid user ID or password")
	ErrPasswordChangeRequired = errors.New("password change required")
	ErrInvalidBackup          = backup.ErrInvalid
)

// ValidationError reports a rejected field. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
