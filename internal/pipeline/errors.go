package pipeline

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a pipeline rejected a request.
type Kind int

const (
	KindInternal Kind = iota
	KindMissingData
	KindMissingField
	KindInvalidValue
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindMissingData:
		return "missing_data"
	case KindMissingField:
		return "missing_field"
	case KindInvalidValue:
		return "invalid_value"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a structured failure that ends a pipeline run. Status is the
// HTTP status returned to the client together with Message.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, status int, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Status: status, Message: msg}
}

// MissingData reports a body without the expected "data" envelope.
func MissingData(format string, args ...any) *Error {
	return newError(KindMissingData, http.StatusBadRequest, format, args...)
}

// MissingField reports a required field that is absent or empty.
func MissingField(format string, args ...any) *Error {
	return newError(KindMissingField, http.StatusBadRequest, format, args...)
}

// InvalidValue reports a present field that breaks a domain constraint.
func InvalidValue(format string, args ...any) *Error {
	return newError(KindInvalidValue, http.StatusBadRequest, format, args...)
}

// NotFound reports a route id with no matching record.
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, http.StatusNotFound, format, args...)
}

// Conflict reports an id mismatch or a forbidden state transition.
func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, http.StatusBadRequest, format, args...)
}

// AsError returns err as an *Error. Errors that did not come from a step
// become a 500 with a generic message so internals never leak to clients.
func AsError(err error) *Error {
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "internal error"}
}
