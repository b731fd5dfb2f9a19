// Package errors defines the error type every layer of the storefront core
// returns. An error's type drives coarse handling, its code picks the HTTP
// status, and the remaining fields say where it happened.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType is the broad class of a failure.
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"

	// ErrorTypeDecode covers uploads and product images that are not images.
	ErrorTypeDecode ErrorType = "DECODE"

	ErrorTypeInternal  ErrorType = "INTERNAL"
	ErrorTypeTimeout   ErrorType = "TIMEOUT"
	ErrorTypeTransport ErrorType = "TRANSPORT"
)

// UnifiedError is the error returned across the core.
type UnifiedError struct {
	Type    ErrorType `json:"type"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`

	Operation string `json:"operation,omitempty"`
	Resource  string `json:"resource,omitempty"`
	UserID    string `json:"userId,omitempty"`

	Retryable bool  `json:"retryable"`
	Cause     error `json:"-"`
}

func (e *UnifiedError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Type, e.Code, e.Message, e.Details)
}

func (e *UnifiedError) Unwrap() error { return e.Cause }

// HTTPStatus is the status the error is rendered with.
func (e *UnifiedError) HTTPStatus() int {
	return e.Code.HTTPStatusCode()
}

// ErrorBuilder assembles a UnifiedError.
type ErrorBuilder struct {
	err *UnifiedError
}

// NewError starts an error of the given type and code. Retryable follows the
// code.
func NewError(errType ErrorType, code ErrorCode, message string) *ErrorBuilder {
	return &ErrorBuilder{err: &UnifiedError{
		Type:      errType,
		Code:      code,
		Message:   message,
		Retryable: code.IsRetryable(),
	}}
}

func (b *ErrorBuilder) WithDetails(details string) *ErrorBuilder {
	b.err.Details = details
	return b
}

func (b *ErrorBuilder) WithOperation(op string) *ErrorBuilder {
	b.err.Operation = op
	return b
}

func (b *ErrorBuilder) WithResource(resource string) *ErrorBuilder {
	b.err.Resource = resource
	return b
}

func (b *ErrorBuilder) WithUserID(userID string) *ErrorBuilder {
	b.err.UserID = userID
	return b
}

// WithCause records the underlying error. Its text becomes the details
// unless details were already set.
func (b *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	b.err.Cause = cause
	if cause != nil && b.err.Details == "" {
		b.err.Details = cause.Error()
	}
	return b
}

func (b *ErrorBuilder) Build() *UnifiedError {
	return b.err
}

func Validation(code ErrorCode, message string) *ErrorBuilder {
	return NewError(ErrorTypeValidation, code, message)
}

func NotFound(code ErrorCode, message string) *ErrorBuilder {
	return NewError(ErrorTypeNotFound, code, message)
}

func Unauthorized(message string) *ErrorBuilder {
	return NewError(ErrorTypeUnauthorized, CodeUserUnauthorized, message)
}

func Forbidden(message string) *ErrorBuilder {
	return NewError(ErrorTypeForbidden, CodeUserForbidden, message)
}

func Internal(code ErrorCode, message string) *ErrorBuilder {
	return NewError(ErrorTypeInternal, code, message)
}

func Timeout(message string) *ErrorBuilder {
	return NewError(ErrorTypeTimeout, CodeTimeout, message)
}

// Transport reports a failed call to a remote store.
func Transport(code ErrorCode, operation string, cause error) *ErrorBuilder {
	return NewError(ErrorTypeTransport, code, "remote call failed").
		WithOperation(operation).
		WithCause(cause)
}

// Decode reports an image that could not be read. resource names the input.
func Decode(code ErrorCode, resource string, cause error) *ErrorBuilder {
	return NewError(ErrorTypeDecode, code, "image could not be decoded").
		WithResource(resource).
		WithCause(cause)
}

func unified(err error) (*UnifiedError, bool) {
	var ue *UnifiedError
	ok := errors.As(err, &ue)
	return ue, ok
}

// IsType reports whether err wraps a UnifiedError of type t.
func IsType(err error, t ErrorType) bool {
	ue, ok := unified(err)
	return ok && ue.Type == t
}

// HasCode reports whether err wraps a UnifiedError with code.
func HasCode(err error, code ErrorCode) bool {
	ue, ok := unified(err)
	return ok && ue.Code == code
}

// IsRetryable reports whether err is worth trying again.
func IsRetryable(err error) bool {
	ue, ok := unified(err)
	return ok && ue.Retryable
}

func IsValidation(err error) bool { return IsType(err, ErrorTypeValidation) }
func IsNotFound(err error) bool { return IsType(err, ErrorTypeNotFound) }
func IsUnauthorized(err error) bool { return IsType(err, ErrorTypeUnauthorized) }
func IsTransport(err error) bool { return IsType(err, ErrorTypeTransport) }
func IsDecode(err error) bool { return IsType(err, ErrorTypeDecode) }

// HTTPStatus maps any error to a status. Plain errors are 500.
func HTTPStatus(err error) int {
	if ue, ok := unified(err); ok {
		return ue.HTTPStatus()
	}
	return CodeInternalError.HTTPStatusCode()
}

// Wrap adds an operation and message to err. A UnifiedError keeps its type,
// code, and context with its message moved to the details. Anything else
// becomes an internal error.
func Wrap(err error, operation, message string) *UnifiedError {
	if err == nil {
		return nil
	}
	if inner, ok := unified(err); ok {
		out := *inner
		out.Message = message
		out.Details = inner.Message
		out.Operation = operation
		out.Cause = err
		return &out
	}
	return &UnifiedError{
		Type:      ErrorTypeInternal,
		Code:      CodeInternalError,
		Message:   message,
		Details:   err.Error(),
		Operation: operation,
		Cause:     err,
	}
}
