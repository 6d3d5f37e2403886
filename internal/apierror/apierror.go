// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Kind classifies a domain failure so the transport layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindNotFound
	KindInsufficientStock
	KindValidation
	KindConflict
	KindUpstream
)

// Error is a domain error whose Detail is safe to show to clients.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string { return e.Detail }

func Unauthorized(detail string) *Error      { return &Error{Kind: KindUnauthorized, Detail: detail} }
func NotFound(detail string) *Error          { return &Error{Kind: KindNotFound, Detail: detail} }
func InsufficientStock(detail string) *Error { return &Error{Kind: KindInsufficientStock, Detail: detail} }
func Invalid(detail string) *Error           { return &Error{Kind: KindValidation, Detail: detail} }
func Conflict(detail string) *Error          { return &Error{Kind: KindConflict, Detail: detail} }
func Upstream(detail string) *Error          { return &Error{Kind: KindUpstream, Detail: detail} }

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps a Kind to its HTTP status code.
func Status(k Kind) int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientStock, KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
