// Package apperr maps domain failures onto HTTP responses.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Kind is the category of a failure.
type Kind string

const (
	KindUnauthorized        Kind = "unauthorized"
	KindForbidden           Kind = "forbidden"
	KindNotFound            Kind = "not_found"
	KindInvalidInput        Kind = "invalid_input"
	KindTooLarge            Kind = "upload_too_large"
	KindRangeNotSatisfiable Kind = "range_not_satisfiable"
	KindTooManyRequests     Kind = "too_many_requests"
	KindInternal            Kind = "internal"
)

// Error is a failure with a category, a client-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code for the error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindRangeNotSatisfiable:
		return http.StatusRequestedRangeNotSatisfiable
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func Invalid(msg string) *Error      { return &Error{Kind: KindInvalidInput, Message: msg} }
func TooLarge(msg string) *Error     { return &Error{Kind: KindTooLarge, Message: msg} }
func TooManyRequests(msg string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: msg}
}

// RangeNotSatisfiable reports a byte range outside the resource.
func RangeNotSatisfiable(msg string) *Error {
	return &Error{Kind: KindRangeNotSatisfiable, Message: msg}
}

// Internal wraps an unexpected failure. The cause is logged, never sent.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Cause: cause}
}

// From converts any error into an *Error. Errors that already carry a kind are
// returned unchanged; everything else becomes an internal error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal server error", err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Response is the JSON body sent to clients on failure.
type Response struct {
	Error string `json:"error"`
	Type  Kind   `json:"type"`
}

// Write renders err as a JSON error response. Server-side failures are logged
// at error level, client mistakes at debug.
func Write(w http.ResponseWriter, log *slog.Logger, err error) {
	e := From(err)
	status := e.HTTPStatus()

	if log != nil {
		if status >= http.StatusInternalServerError {
			log.Error("request failed", slog.String("type", string(e.Kind)), slog.Any("error", err))
		} else {
			log.Debug("request rejected", slog.String("type", string(e.Kind)), slog.String("error", e.Error()))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Error: e.Message, Type: e.Kind})
}
