// Package model defines the domain types shared by every SnapDog component:
// zones, clients, playlists, tracks, commands, status events and the closed
// error-kind enumeration of spec §7.
package model

import "fmt"

// ErrorKind is the closed set of cross-surface error kinds from spec §7.
type ErrorKind string

const (
	ErrValidation         ErrorKind = "VALIDATION_ERROR"
	ErrNotFound           ErrorKind = "NOT_FOUND"
	ErrInvalidOperation   ErrorKind = "INVALID_OPERATION"
	ErrUpstreamUnavailable ErrorKind = "UPSTREAM_UNAVAILABLE"
	ErrUpstreamTimeout    ErrorKind = "UPSTREAM_TIMEOUT"
	ErrConfig             ErrorKind = "CONFIG"
	ErrAdapterLag         ErrorKind = "ADAPTER_LAG"
	ErrInternal           ErrorKind = "INTERNAL"
)

// httpStatus maps each ErrorKind to the HTTP status the REST surface uses.
var httpStatus = map[ErrorKind]int{
	ErrValidation:          400,
	ErrNotFound:            404,
	ErrInvalidOperation:    409,
	ErrUpstreamUnavailable: 503,
	ErrUpstreamTimeout:     504,
	ErrConfig:              500,
	ErrAdapterLag:          500,
	ErrInternal:            500,
}

// AppError is a structured, typed application error carried across every
// adapter (HTTP response body, MQTT .../error payload, KNX log emission,
// SYSTEM_ERROR fan-out event).
type AppError struct {
	Kind    ErrorKind `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// HTTPStatus returns the HTTP status code for this error's kind.
func (e *AppError) HTTPStatus() int {
	if s, ok := httpStatus[e.Kind]; ok {
		return s
	}
	return 500
}

// NewError constructs an AppError of the given kind.
func NewError(kind ErrorKind, msg string) *AppError {
	return &AppError{Kind: kind, Message: msg}
}

func NewErrorf(kind ErrorKind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation, NotFound, etc. are convenience constructors mirroring the
// teacher's ErrNotFound/ErrBadRequest constructor-function style.
func Validation(msg string) *AppError       { return NewError(ErrValidation, msg) }
func NotFound(msg string) *AppError         { return NewError(ErrNotFound, msg) }
func InvalidOperation(msg string) *AppError { return NewError(ErrInvalidOperation, msg) }
func UpstreamUnavailable(msg string) *AppError {
	return NewError(ErrUpstreamUnavailable, msg)
}
func UpstreamTimeout(msg string) *AppError { return NewError(ErrUpstreamTimeout, msg) }
func ConfigError(msg string) *AppError     { return NewError(ErrConfig, msg) }
func Internal(msg string) *AppError        { return NewError(ErrInternal, msg) }
