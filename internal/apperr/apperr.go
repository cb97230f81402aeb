package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a business failure. Every kind maps to exactly one HTTP
// status at the boundary; handlers raise kinds, never statuses.
type Kind int

const (
	Unauthenticated Kind = iota // missing/invalid/expired credential
	Forbidden                   // disabled account, insufficient role, self-protection
	NotFound
	Conflict // duplicate unique field, referential constraint
	Validation
	Internal
)

// Error is the single error value carried from business logic to the
// HTTP boundary.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Status returns the HTTP status for a kind.
func (k Kind) Status() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusBadRequest
	case Validation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// From extracts an *Error from err, wrapping unknown errors as Internal
// so storage details never reach the wire.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if IsUniqueViolation(err) {
		// race past a uniqueness pre-check; report generically
		return New(Conflict, "duplicate value violates a unique constraint")
	}
	return New(Internal, "internal server error")
}

// IsUniqueViolation reports whether err looks like a storage-level unique
// constraint failure. Matched by substring because gorm surfaces the raw
// driver error (postgres and sqlite word it differently).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "unique constraint") ||
		strings.Contains(s, "already exists")
}
