package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode is a stable, machine-readable rejection reason. The presentation
// layer keys its user-facing messages off these values, so codes must never
// be renamed once persisted in logs.
type ErrorCode string

const (
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeStorage    ErrorCode = "STORAGE_ERROR"

	ErrCodeUserBanned     ErrorCode = "USER_BANNED"
	ErrCodeCooldownActive ErrorCode = "COOLDOWN_ACTIVE"

	ErrCodeGiveawayNotFound  ErrorCode = "GIVEAWAY_NOT_FOUND"
	ErrCodeGiveawayNotActive ErrorCode = "GIVEAWAY_NOT_ACTIVE"
	ErrCodeGiveawayEnded     ErrorCode = "GIVEAWAY_ENDED"
	ErrCodeAlreadyJoined     ErrorCode = "ALREADY_JOINED"
	ErrCodeNotParticipant    ErrorCode = "NOT_PARTICIPANT"

	ErrCodeSubscriptionRequired ErrorCode = "SUBSCRIPTION_REQUIRED"
)

// AppError is a typed application error carrying a stable code.
type AppError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Cause     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is makes AppErrors comparable by code through errors.Is.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Timestamp: time.Now()}
}

// Newf creates a new application error with formatting.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a code.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// CodeOf extracts the code from an error, falling back to INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// AsAppError casts an error to AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NewValidationError creates a validation error for a specific field.
func NewValidationError(field, reason string) *AppError {
	return Newf(ErrCodeValidation, "validation failed for field '%s': %s", field, reason)
}

// NewGiveawayNotFoundError creates a "giveaway not found" error.
func NewGiveawayNotFoundError(giveawayID string) *AppError {
	return Newf(ErrCodeGiveawayNotFound, "giveaway not found: %s", giveawayID)
}

// NewStorageError wraps a persistence failure.
func NewStorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorage, fmt.Sprintf("storage operation failed: %s", operation))
}
