package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("invite"), CodeNotFound, http.StatusNotFound},
		{"permission denied", PermissionDenied(""), CodePermissionDenied, http.StatusForbidden},
		{"unauthorized", Unauthorized(""), CodeUnauthorized, http.StatusUnauthorized},
		{"invalid argument", InvalidArgument("bad email"), CodeInvalidArgument, http.StatusBadRequest},
		{"rate limited", RateLimited(""), CodeRateLimited, http.StatusTooManyRequests},
		{"internal", Internal(assert.AnError), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	err := Internal(assert.AnError)
	assert.Equal(t, "internal error: "+assert.AnError.Error(), err.Error())
	assert.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, "invite not found", NotFound("invite").Error())
}

func TestAppError_ToResponse(t *testing.T) {
	resp := PermissionDenied("admin required").ToResponse()
	assert.Equal(t, CodePermissionDenied, resp.Error.Code)
	assert.Equal(t, "admin required", resp.Error.Message)
}

func TestAsAndStatus(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", RateLimited(""))
	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeRateLimited, appErr.Code)
	assert.Equal(t, http.StatusTooManyRequests, GetStatusCode(wrapped))

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(errors.New("plain")))
}
