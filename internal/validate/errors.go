package validate

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a request failure.
type Kind int

const (
	// BadRequest means the input was malformed or had the wrong type.
	BadRequest Kind = iota + 1

	// NotFound means a referenced list or task does not exist.
	NotFound

	// Conflict is reserved for uniqueness violations. No operation returns it yet.
	Conflict
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad request"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a request failure carrying one human-readable sentence.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Status returns the HTTP status code for the error.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// newError joins parts with spaces and terminates the sentence with a period.
func newError(kind Kind, parts ...string) *Error {
	return &Error{Kind: kind, Message: strings.Join(parts, " ") + "."}
}

// NewBadRequest returns a BadRequest error for the sentence built from parts.
func NewBadRequest(parts ...string) *Error { return newError(BadRequest, parts...) }

// NewNotFound returns a NotFound error for the sentence built from parts.
func NewNotFound(parts ...string) *Error { return newError(NotFound, parts...) }

// NewConflict returns a Conflict error for the sentence built from parts.
func NewConflict(parts ...string) *Error { return newError(Conflict, parts...) }

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsBadRequest reports whether err is a BadRequest error.
func IsBadRequest(err error) bool { return KindOf(err) == BadRequest }

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return KindOf(err) == NotFound }

// StatusOf returns the HTTP status for err; non-request errors map to 500.
func StatusOf(err error) int {
	return KindOf(err).Status()
}
