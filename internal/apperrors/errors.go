// Package apperrors defines the error kinds the API reports and how they map to HTTP.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// StatusClientClosedRequest is the nginx convention for a client that hung up
// before the response was ready.
const StatusClientClosedRequest = 499

// Kind is the machine-readable category of an error.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindUnavailable     Kind = "unavailable"
	KindCanceled        Kind = "canceled"
	KindInternal        Kind = "internal"
)

// Error carries a kind, a client-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Fields  map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// WithField attaches a context field that is logged and returned to the client.
func (e *Error) WithField(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func InvalidArgument(message string) *Error { return newError(KindInvalidArgument, message, nil) }
func Unauthorized(message string) *Error    { return newError(KindUnauthorized, message, nil) }
func Forbidden(message string) *Error       { return newError(KindForbidden, message, nil) }
func NotFound(message string) *Error        { return newError(KindNotFound, message, nil) }

func Conflict(message string, cause error) *Error {
	return newError(KindConflict, message, cause)
}

func Internal(message string, cause error) *Error {
	return newError(KindInternal, message, cause)
}

func Unavailable(message string, cause error) *Error {
	return newError(KindUnavailable, message, cause)
}

func Canceled(message string, cause error) *Error {
	return newError(KindCanceled, message, cause)
}

// As converts any error into an *Error. Context errors become canceled or
// unavailable; anything else unknown becomes internal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, context.Canceled):
		return Canceled("request canceled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return Unavailable("request timed out", err)
	}
	return Internal("internal server error", err)
}

// KindOf returns the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	return As(err).Kind
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Response is the JSON body sent to clients.
type Response struct {
	Error  string         `json:"error"`
	Kind   Kind           `json:"kind"`
	Fields map[string]any `json:"fields,omitempty"`
}

func (e *Error) Response() Response {
	return Response{Error: e.Message, Kind: e.Kind, Fields: e.Fields}
}
