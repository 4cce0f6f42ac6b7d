package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors used with Mark to classify failures. Callers compare with
// errors.Is (see the Is* helpers below) rather than matching messages.
var (
	ErrValidation           = errors.New("validation_error")
	ErrNotFound             = errors.New("not_found")
	ErrInternal             = errors.New("internal_error")
	ErrProviderUnavailable  = errors.New("billing_provider_unavailable")
	ErrDirectoryUnavailable = errors.New("family_directory_unavailable")
	ErrNotInitialized       = errors.New("not_initialized")
	ErrHTTPClient           = errors.New("http_client_error")
)

// InternalError carries a user-facing hint and structured details alongside
// the underlying cause. It is always classified via Mark before leaving a
// package boundary.
type InternalError struct {
	cause             error
	hint              string
	reportableDetails map[string]any
}

func (e *InternalError) Error() string {
	return e.cause.Error()
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

// Hint returns the user-facing hint, if any.
func (e *InternalError) Hint() string {
	return e.hint
}

// ReportableDetails returns structured details safe to expose to API clients.
func (e *InternalError) ReportableDetails() map[string]any {
	return e.reportableDetails
}

// ErrorBuilder provides a fluent API to construct classified errors.
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts building an error with the given message.
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{cause: errors.NewWithDepth(1, message)}}
}

// NewErrorf starts building an error with a formatted message.
func NewErrorf(format string, args ...any) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{cause: errors.NewWithDepthf(1, format, args...)}}
}

// WithError starts building an error that wraps an existing cause.
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.NewWithDepth(1, "unknown error")
	}
	return &ErrorBuilder{err: &InternalError{cause: err}}
}

// WithHint attaches a user-facing hint.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

// WithHintf attaches a formatted user-facing hint.
func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err.hint = errors.Newf(format, args...).Error()
	return b
}

// WithReportableDetails attaches structured details that are safe to expose
// in API responses.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	b.err.reportableDetails = details
	return b
}

// Mark classifies the error against one of the package sentinels and returns
// the final error. errors.Is(result, sentinel) holds for the given sentinel.
func (b *ErrorBuilder) Mark(sentinel error) error {
	return errors.Mark(b.err, sentinel)
}

// Cause returns the deepest cause of err.
func Cause(err error) error {
	return errors.Cause(err)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsProviderUnavailable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}

func IsDirectoryUnavailable(err error) bool {
	return errors.Is(err, ErrDirectoryUnavailable)
}

func IsNotInitialized(err error) bool {
	return errors.Is(err, ErrNotInitialized)
}
