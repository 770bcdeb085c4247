package xerrors

import (
	"errors"
	"fmt"
	"time"
)

// Common reusable application errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden")
	ErrInternal         = errors.New("internal server error")
	ErrCodeExpired      = errors.New("verification code expired")
	ErrCodeInvalid      = errors.New("verification code invalid")
	ErrCodeAlreadyUsed  = errors.New("verification code already used")
	ErrAttemptsExceeded = errors.New("verification attempts exceeded")
	ErrDeliveryFailure  = errors.New("code delivery failed")
)

// AccountLockedError is returned when an account is temporarily locked after
// repeated failed logins. RetryAfter carries the remaining lock duration when
// it is derivable from the record.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("account locked, retry after %s", e.RetryAfter.Round(time.Second))
	}
	return "account locked"
}

// RateLimitedError is returned when a code resend (or similar throttled
// operation) is requested before the minimum delay has elapsed.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Second))
}

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates malformed-input failures for a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}
	return fmt.Sprintf("invalid input: %s %s", e.Fields[0].Field, e.Fields[0].Message)
}

// Add appends a field failure and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// AsAccountLocked extracts an AccountLockedError if err carries one.
func AsAccountLocked(err error) (*AccountLockedError, bool) {
	var locked *AccountLockedError
	if errors.As(err, &locked) {
		return locked, true
	}
	return nil, false
}

// AsRateLimited extracts a RateLimitedError if err carries one.
func AsRateLimited(err error) (*RateLimitedError, bool) {
	var limited *RateLimitedError
	if errors.As(err, &limited) {
		return limited, true
	}
	return nil, false
}

// AsValidation extracts a ValidationError if err carries one.
func AsValidation(err error) (*ValidationError, bool) {
	var invalid *ValidationError
	if errors.As(err, &invalid) {
		return invalid, true
	}
	return nil, false
}
