// Package apierror provides the typed error taxonomy shared by all services
// and the standardized response envelopes the API returns for 4xx/5xx.
// Services return *Error values; handlers map them to HTTP status codes via
// HTTPStatus so internal details (stack traces, DB errors) never leak out.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of the stable categories the API
// surfaces to clients.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindConflict          Kind = "conflict"
	KindNotFound          Kind = "not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindInternal          Kind = "internal"
)

// Error is the canonical service-layer error. Message is safe to show to
// end users.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStock names the offending product and both quantities so the
// dashboard can show an actionable message.
func InsufficientStock(product string, available, requested int) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for product %s: available %d, requested %d", product, available, requested),
	}
}

func Internal() *Error {
	return &Error{Kind: KindInternal, Message: "internal server error"}
}

// KindOf extracts the Kind from any error chain; unknown errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the status code the gateway responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Code: string(KindInternal), Detail: msg}
}

// Response builds the wire envelope for a service error. Internal errors are
// masked with a generic message.
func Response(err error) *APIError {
	kind := KindOf(err)
	detail := err.Error()
	if kind == KindInternal {
		detail = "internal server error"
	}
	return &APIError{Code: string(kind), Detail: detail}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: string(KindValidation), Detail: "validation error", Fields: fields}
}
