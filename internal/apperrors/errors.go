package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so the HTTP layer can map it to a response code
// without inspecting message text.
type Kind int

const (
	// Internal is a store or transport failure not attributable to caller input.
	Internal Kind = iota
	// InvalidInput is a malformed identifier or missing required field.
	InvalidInput
	// NotFound means a referenced user, post or image does not exist.
	NotFound
	// Conflict is an illegal state transition, e.g. a duplicate friend request.
	Conflict
	// Unauthorized means the credential is missing or invalid.
	Unauthorized
	// Forbidden means the caller is acting on a resource it does not own.
	Forbidden
)

// Error carries a Kind, a caller-facing message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err, defaulting to Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the caller-facing message for err. Internal errors are
// collapsed to a generic message so no store detail leaks out.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error kind to its HTTP response code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case InvalidInput:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
