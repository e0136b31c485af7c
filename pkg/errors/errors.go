package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport mapping.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"

	// CodeAlreadyReported marks a repeated request whose effect already exists.
	CodeAlreadyReported Code = "ALREADY_REPORTED"
	CodeUpload          Code = "UPLOAD_ERROR"
)

// Metadata is how a Code is rendered on the wire.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool

	// business outcomes surface their own message to callers
	business bool
}

func business(status int, public string, details bool) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public, DetailsAllowed: details, business: true}
}

func infra(status int, public string) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public, Retryable: true}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:      business(http.StatusBadRequest, "validation failed", true),
	CodeUnauthorized:    business(http.StatusUnauthorized, "authentication required", false),
	CodeForbidden:       business(http.StatusForbidden, "access denied", false),
	CodeNotFound:        business(http.StatusNotFound, "resource not found", false),
	CodeConflict:        business(http.StatusConflict, "conflict detected", false),
	CodeAlreadyReported: business(http.StatusAlreadyReported, "already reported", false),
	CodeStateConflict:   business(http.StatusUnprocessableEntity, "state transition disallowed", true),
	CodeIdempotency:     business(http.StatusConflict, "idempotency key reused", true),
	CodeRateLimit:       business(http.StatusTooManyRequests, "rate limit exceeded", false),

	CodeInternal:   infra(http.StatusInternalServerError, "internal server error"),
	CodeDependency: infra(http.StatusServiceUnavailable, "dependency unavailable"),
	CodeUpload:     infra(http.StatusBadGateway, "media upload failed"),
}

// IsBusiness reports whether the code is an expected domain outcome whose
// message can be shown to callers.
func IsBusiness(code Code) bool {
	return metadataByCode[code].business
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is the typed error every service returns across package boundaries.
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

// Wrap attaches a code and message to err. A nil err behaves like New.
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

// WithDetails sets the payload rendered under "details" when the code allows it.
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

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether the outermost *Error in err's chain has code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
