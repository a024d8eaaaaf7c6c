// Package apperr defines the error taxonomy shared by services and handlers.
//
// Services return *AppError values; handlers map them to HTTP responses with
// HTTPStatus. The Cause of an error is for server-side logs only.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindPermission
	KindNotFound
	KindMethodNotAllowed
	KindRateLimited
	KindUnavailable
)

// Machine-readable codes sent to clients.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeDuplicateReview  = "DUPLICATE_REVIEW"
	CodeInvalidCode      = "INVALID_CODE"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeMailUnavailable  = "MAIL_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. ErrDuplicateReview and ErrInvalidCode are
// specializations and also match ErrValidation.
var (
	ErrValidation      = errors.New("validation error")
	ErrPermission      = errors.New("permission denied")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateReview = errors.New("duplicate review")
	ErrInvalidCode     = errors.New("invalid confirmation code")
)

// FieldError is a single field-level failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Kind    Kind         `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
	Cause   error        `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is lets errors.Is match the package sentinels by kind and code.
func (e *AppError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrPermission:
		return e.Kind == KindPermission
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrDuplicateReview:
		return e.Code == CodeDuplicateReview
	case ErrInvalidCode:
		return e.Code == CodeInvalidCode
	}
	return false
}

// HTTPStatus maps the error to a response status code.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindPermission:
		if e.Code == CodeUnauthorized {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Field returns the message attached to field, if any.
func (e *AppError) Field(field string) (string, bool) {
	for _, d := range e.Details {
		if d.Field == field {
			return d.Message, true
		}
	}
	return "", false
}

// Validation builds a ValidationError. Without field details the message
// is reported under NonFieldErrors, so every 400 has the same shape.
func Validation(msg string, details ...FieldError) *AppError {
	if len(details) == 0 {
		details = []FieldError{{Field: NonFieldErrors, Message: msg}}
	}
	return &AppError{Kind: KindValidation, Code: CodeValidation, Message: msg, Details: details}
}

// FieldInvalid is a ValidationError with a single field detail.
func FieldInvalid(field, msg string) *AppError {
	return Validation(msg, FieldError{Field: field, Message: msg})
}

// NonFieldErrors keys details that concern the object as a whole.
const NonFieldErrors = "non_field_errors"

func DuplicateReview() *AppError {
	msg := "you have already reviewed this title"
	return &AppError{
		Kind:    KindValidation,
		Code:    CodeDuplicateReview,
		Message: msg,
		Details: []FieldError{{Field: NonFieldErrors, Message: msg}},
	}
}

func InvalidCode() *AppError {
	msg := "confirmation code is invalid or expired"
	return &AppError{
		Kind:    KindValidation,
		Code:    CodeInvalidCode,
		Message: msg,
		Details: []FieldError{{Field: "confirmation_code", Message: msg}},
	}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Kind: KindPermission, Code: CodeUnauthorized, Message: msg}
}

func Forbidden(msg string) *AppError {
	return &AppError{Kind: KindPermission, Code: CodeForbidden, Message: msg}
}

func NotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Code: CodeNotFound, Message: resource + " not found"}
}

func MethodNotAllowed(method string) *AppError {
	return &AppError{
		Kind:    KindMethodNotAllowed,
		Code:    CodeMethodNotAllowed,
		Message: fmt.Sprintf("method %q not allowed", method),
	}
}

func RateLimited(msg string) *AppError {
	return &AppError{Kind: KindRateLimited, Code: CodeRateLimited, Message: msg}
}

func MailUnavailable(cause error) *AppError {
	return &AppError{
		Kind:    KindUnavailable,
		Code:    CodeMailUnavailable,
		Message: "confirmation email could not be sent, try again later",
		Cause:   cause,
	}
}

func Internal(cause error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    CodeInternal,
		Message: "an unexpected error occurred",
		Cause:   cause,
	}
}

// As extracts the *AppError from err's chain, wrapping anything else as Internal.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
