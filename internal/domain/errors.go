package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Field   string
	Value   any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeInvalidAmount          = "INVALID_AMOUNT"
	ErrCodeTokenNotRegistered     = "CONSENT_TOKEN_NOT_REGISTERED"
	ErrCodeConfirmationInProgress = "CONFIRMATION_IN_PROGRESS"
	ErrCodeInvalidTypedMessage    = "INVALID_TYPED_MESSAGE"
	ErrCodeInvalidSignature       = "INVALID_SIGNATURE"
)

var (
	ErrTokenNotRegistered     = &DomainError{Code: ErrCodeTokenNotRegistered, Message: "Consent Token wasn't registered."}
	ErrConfirmationInProgress = &DomainError{Code: ErrCodeConfirmationInProgress, Message: "Consent Token confirmation is already in progress."}
)

func NewValidationError(field string, value any, message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

func NewInvalidAmountError(value string, reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %q: %s", value, reason),
		Field:   "amount",
		Value:   value,
	}
}

func NewInvalidTypedMessageError(reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTypedMessage,
		Message: fmt.Sprintf("invalid typed message: %s", reason),
		Field:   "typedMessage",
	}
}

func NewInvalidSignatureError(reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidSignature,
		Message: fmt.Sprintf("invalid signature: %s", reason),
		Field:   "signature",
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
