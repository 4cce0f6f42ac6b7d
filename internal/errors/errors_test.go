package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkClassifiesError(t *testing.T) {
	err := NewError("subscription not found").
		WithHint("User has no subscription record").
		WithReportableDetails(map[string]any{"user_id": "alice"}).
		Mark(ErrNotFound)

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, "subscription not found", err.Error())
}

func TestWithErrorWrapsCause(t *testing.T) {
	cause := NewError("connection refused").Mark(ErrHTTPClient)
	err := WithError(cause).
		WithHint("Unable to reach the billing provider").
		Mark(ErrProviderUnavailable)

	assert.True(t, IsProviderUnavailable(err))
	// The deepest cause stays reachable through the wrap chain.
	assert.Equal(t, "connection refused", Cause(err).Error())
}

func TestNewErrorResponseUsesHint(t *testing.T) {
	err := NewError("row not found in subscriptions table").
		WithHint("User has no subscription record").
		WithReportableDetails(map[string]any{"user_id": "alice"}).
		Mark(ErrNotFound)

	resp := NewErrorResponse(err)
	assert.False(t, resp.Success)
	assert.Equal(t, "User has no subscription record", resp.Error.Message)
	assert.Equal(t, "row not found in subscriptions table", resp.Error.InternalError)
	assert.Equal(t, "alice", resp.Error.Details["user_id"])
}

func TestNewErrorResponseWithoutHint(t *testing.T) {
	resp := NewErrorResponse(assert.AnError)
	assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
	assert.Equal(t, assert.AnError.Error(), resp.Error.InternalError)
}

func TestHTTPStatusFromErr(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatusFromErr(nil))
	assert.Equal(t, http.StatusBadRequest,
		HTTPStatusFromErr(NewError("bad input").Mark(ErrValidation)))
	assert.Equal(t, http.StatusNotFound,
		HTTPStatusFromErr(NewError("missing").Mark(ErrNotFound)))
	assert.Equal(t, http.StatusServiceUnavailable,
		HTTPStatusFromErr(NewError("billing down").Mark(ErrProviderUnavailable)))
	assert.Equal(t, http.StatusServiceUnavailable,
		HTTPStatusFromErr(NewError("directory down").Mark(ErrDirectoryUnavailable)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromErr(assert.AnError))
}
