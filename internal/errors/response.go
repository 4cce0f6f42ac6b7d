package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// ErrorDetail is the wire shape of a single error.
type ErrorDetail struct {
	Message       string         `json:"message"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the standard error envelope returned by the REST surface.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// NewErrorResponse builds the API error envelope for err. The hint, when
// present, becomes the client-facing message; the raw error message is only
// surfaced as internal_error.
func NewErrorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Message: "An unexpected error occurred",
		},
	}
	if err == nil {
		return resp
	}

	resp.Error.InternalError = err.Error()

	var ie *InternalError
	if errors.As(err, &ie) {
		if ie.Hint() != "" {
			resp.Error.Message = ie.Hint()
		}
		resp.Error.Details = ie.ReportableDetails()
	}
	return resp
}

// HTTPStatusFromErr maps a classified error to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsProviderUnavailable(err), IsDirectoryUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
