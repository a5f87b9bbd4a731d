package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeUpstreamFailed = "UPSTREAM_FAILED"
	ErrCodeTimeout        = "TIMEOUT"
	ErrCodeRateLimited    = "RATE_LIMITED"
)

// UpstreamUnavailable is reported when MetaKeep gives no usable status text.
const UpstreamUnavailable = "API UNAVAILABLE"

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "Internal Server Error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewRateLimitedError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeRateLimited,
		Message:    "Too many requests, slow down.",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}

// GatewayError is a failed call to the wallet provider. Status carries the
// provider's own status text, passed through without interpretation.
type GatewayError struct {
	Operation  string
	StatusCode int
	Status     string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metakeep %s failed: %s (status: %d): %v", e.Operation, e.Status, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("metakeep %s failed: %s (status: %d)", e.Operation, e.Status, e.StatusCode)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func IsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	ok := errors.As(err, &gwErr)
	return gwErr, ok
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrCodeConfirmationInProgress:
			return http.StatusConflict
		default:
			return http.StatusBadRequest
		}
	}

	if _, ok := IsGatewayError(err); ok {
		return http.StatusInternalServerError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	return http.StatusInternalServerError
}

// ToErrorCode gives a stable error code for API responses
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	if _, ok := IsGatewayError(err); ok {
		return ErrCodeUpstreamFailed
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}

	return ErrCodeInternal
}

// ToMessage is the client facing text for err. Internal details never leak.
func ToMessage(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Message
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	if gwErr, ok := IsGatewayError(err); ok {
		return gwErr.Status
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out"
	}

	return "Internal Server Error"
}
