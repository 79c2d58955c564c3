package service

import (
	"errors"
	"fmt"
)

// Authentication failures. All of them map to 401.
var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrTokenRevoked          = errors.New("token revoked or not found")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
	ErrRefreshTokenExpired   = errors.New("refresh token expired")
	ErrUserNotFound          = errors.New("user not found")
)

// ErrForbidden is returned when the caller lacks a role or does not own the
// resource being mutated.
var ErrForbidden = errors.New("insufficient permissions")

// ErrNotFound is the parent of every entity not-found error; test with
// errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("not found")

var (
	ErrCompanyNotFound = fmt.Errorf("company %w", ErrNotFound)
	ErrLeadNotFound    = fmt.Errorf("lead %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)
)

var (
	ErrDuplicateName = errors.New("company name already exists")
	ErrEmptyMessage  = errors.New("comment cannot be empty")
)

// ErrValidation matches every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + " " + e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
