package application_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "validation",
			err:     domain.NewValidationError("email", "nope", `"email" must be a valid email`),
			status:  http.StatusBadRequest,
			code:    domain.ErrCodeValidation,
			message: `"email" must be a valid email`,
		},
		{
			name:    "unregistered token",
			err:     domain.ErrTokenNotRegistered,
			status:  http.StatusBadRequest,
			code:    domain.ErrCodeTokenNotRegistered,
			message: "Consent Token wasn't registered.",
		},
		{
			name:    "confirmation in progress",
			err:     fmt.Errorf("confirm: %w", domain.ErrConfirmationInProgress),
			status:  http.StatusConflict,
			code:    domain.ErrCodeConfirmationInProgress,
			message: domain.ErrConfirmationInProgress.Message,
		},
		{
			name: "upstream failure keeps provider status text",
			err: &application.GatewayError{
				Operation:  "transfer",
				StatusCode: http.StatusBadRequest,
				Status:     "INSUFFICIENT_BALANCE",
			},
			status:  http.StatusInternalServerError,
			code:    application.ErrCodeUpstreamFailed,
			message: "INSUFFICIENT_BALANCE",
		},
		{
			name:    "rate limited",
			err:     application.NewRateLimitedError(),
			status:  http.StatusTooManyRequests,
			code:    application.ErrCodeRateLimited,
			message: "Too many requests, slow down.",
		},
		{
			name:    "deadline",
			err:     fmt.Errorf("calling metakeep: %w", context.DeadlineExceeded),
			status:  http.StatusGatewayTimeout,
			code:    application.ErrCodeTimeout,
			message: "Request timed out",
		},
		{
			name:    "unexpected error does not leak",
			err:     errors.New("pq: connection refused to 10.0.0.3"),
			status:  http.StatusInternalServerError,
			code:    application.ErrCodeInternal,
			message: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, application.ToHTTPStatus(tt.err))
			assert.Equal(t, tt.code, application.ToErrorCode(tt.err))
			assert.Equal(t, tt.message, application.ToMessage(tt.err))
		})
	}
}

func TestToHTTPStatus_Nil(t *testing.T) {
	assert.Equal(t, http.StatusOK, application.ToHTTPStatus(nil))
}

func TestGatewayError_Unwrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := &application.GatewayError{Operation: "getWallet", StatusCode: 200, Status: application.UpstreamUnavailable, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "metakeep getWallet failed: API UNAVAILABLE")
}
