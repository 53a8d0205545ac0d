package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies a failure and selects its HTTP status and public message.
type Code string

const (
	// CodeValidation covers missing or malformed input and duplicate registrations.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeUnauthorized is returned when the caller is not authenticated.
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeForbidden is returned when the caller's role or ownership does not permit the action.
	CodeForbidden Code = "FORBIDDEN"
	CodeNotFound  Code = "NOT_FOUND"
	// CodeInvalidTransition is returned when an order or quotation is not in a state
	// that allows the requested lifecycle action.
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeIdempotency       Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit         Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeDependency        Code = "DEPENDENCY_ERROR"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

// Client-facing codes echo their service message and may carry details;
// 5xx codes only ever expose PublicMessage.
var metadataByCode = map[Code]Metadata{
	CodeValidation:        {http.StatusBadRequest, false, "validation failed", true},
	CodeUnauthorized:      {http.StatusUnauthorized, false, "authentication required", false},
	CodeForbidden:         {http.StatusForbidden, false, "access denied", true},
	CodeNotFound:          {http.StatusNotFound, false, "resource not found", false},
	CodeInvalidTransition: {http.StatusBadRequest, false, "transition not allowed", true},
	CodeIdempotency:       {http.StatusConflict, false, "idempotency key reused", true},
	CodeRateLimit:         {http.StatusTooManyRequests, false, "rate limit exceeded", false},
	CodeInternal:          {http.StatusInternalServerError, true, "internal server error", false},
	CodeDependency:        {http.StatusServiceUnavailable, true, "dependency unavailable", true},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is the typed error carried from services to the HTTP layer.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	default:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// IsCode reports whether the outermost typed error in err's chain carries code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// StatusOf returns the HTTP status err maps to. Untyped errors are internal.
func StatusOf(err error) int {
	if typed := As(err); typed != nil {
		return MetadataFor(typed.Code()).HTTPStatus
	}
	return MetadataFor(CodeInternal).HTTPStatus
}
