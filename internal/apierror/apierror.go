// Package apierror defines the error taxonomy the domain services raise and
// the envelope the HTTP boundary serializes. Services raise errors at the
// point of detection and never swallow them; the boundary maps each Kind to a
// transport status code without leaking internals (stack traces, DB errors).
package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies a domain error.
type Kind int

const (
	KindInternal Kind = iota
	// KindValidation: field-scoped, client-correctable input problems.
	KindValidation
	// KindNotFound: lookup miss. Cross-tenant misses are deliberately
	// indistinguishable from true absence.
	KindNotFound
	// KindConflict: state collisions (double confirm, repeated void,
	// duplicate open session).
	KindConflict
	// KindUnauthorized: missing/invalid tenant, sucursal or user context.
	KindUnauthorized
	// KindTransient: rolled-back infrastructure failure (lock timeout,
	// connection loss). Callers may retry the whole operation.
	KindTransient
)

// Error is the canonical domain error. Fields is only set for validation
// errors and maps field name → message.
type Error struct {
	Kind   Kind              `json:"-"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
	cause  error
}

func (e *Error) Error() string { return e.Detail }

func (e *Error) Unwrap() error { return e.cause }

// Validation builds a field-scoped validation error.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Detail: "Validacion fallida.", Fields: fields}
}

// ValidationField is the common single-field case.
func ValidationField(field, msg string) *Error {
	return Validation(map[string]string{field: msg})
}

func NotFound(detail string) *Error {
	return &Error{Kind: KindNotFound, Detail: detail}
}

func Conflict(detail string) *Error {
	return &Error{Kind: KindConflict, Detail: detail}
}

func Unauthorized(detail string) *Error {
	return &Error{Kind: KindUnauthorized, Detail: detail}
}

// Transient wraps an infrastructure failure whose transaction was rolled back.
func Transient(detail string, cause error) *Error {
	return &Error{Kind: KindTransient, Detail: detail, cause: cause}
}

// Internal hides an unexpected error behind a generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Detail: "Error interno del servidor", cause: cause}
}

// KindOf extracts the Kind of any error; non-taxonomy errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the transport code the boundary responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// AsError returns the taxonomy error inside err, or an Internal wrapper so
// handlers always have a serializable envelope.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
