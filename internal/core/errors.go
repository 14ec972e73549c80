package core

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned across a store or service boundary
// matches exactly one of these with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrStore        = errors.New("store error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrInvalidAmount        = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrAmountTooLarge       = fmt.Errorf("%w: amount exceeds the maximum of %d cents", ErrValidation, MaxAmountCents)
	ErrInvalidLimit         = fmt.Errorf("%w: monthly limit must be greater than zero", ErrValidation)
	ErrInvalidDate          = fmt.Errorf("%w: invalid date, expected YYYY-MM-DD", ErrValidation)
	ErrInvalidCategory      = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrInvalidPaymentMethod = fmt.Errorf("%w: unknown payment method", ErrValidation)
	ErrDescriptionTooLong   = fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	ErrMissingOwner         = fmt.Errorf("%w: missing owner", ErrValidation)
	ErrIncompleteDateRange  = fmt.Errorf("%w: date range needs both start and end", ErrValidation)
	ErrInvertedDateRange    = fmt.Errorf("%w: date range start is after end", ErrValidation)
	ErrInvalidPeriod        = fmt.Errorf("%w: invalid year or month", ErrValidation)
	ErrEmptyName            = fmt.Errorf("%w: name is required", ErrValidation)
	ErrInvalidEmail         = fmt.Errorf("%w: invalid email", ErrValidation)
	ErrWeakPassword         = fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLen)
	ErrPasswordTooLong      = fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, MaxPasswordLen)

	ErrExpenseNotFound = fmt.Errorf("expense %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)

	ErrEmailTaken         = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrSessionExpired     = fmt.Errorf("%w: session expired", ErrUnauthorized)
)

// StoreError wraps a persistence failure so callers can tell it apart from
// validation and not-found outcomes while keeping the cause inspectable.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

// Kind names the category of err for logs and API responses.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found_error"
	case errors.Is(err, ErrUnauthorized):
		return "auth_error"
	case errors.Is(err, ErrConflict):
		return "conflict_error"
	case errors.Is(err, ErrStore):
		return "database_error"
	default:
		return "internal_error"
	}
}
