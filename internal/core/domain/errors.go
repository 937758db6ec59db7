package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateResource  = errors.New("duplicate resource")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Document workflow errors
var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrDocumentArchived  = errors.New("document is archived and read-only")
	ErrNoOpForward       = errors.New("document already held by target department")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReasonRequired    = errors.New("status change reason is required")
)

// File errors
var (
	ErrUnsupportedFileType = errors.New("file type not allowed")
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNotFound        = errors.New("file not found")
)

// User and department errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrDepartmentNotFound = errors.New("department not found")
)

// InvalidTransitionError names the rejected (old, new) status pair.
// errors.Is(err, ErrInvalidTransition) matches it.
type InvalidTransitionError struct {
	From DocumentStatus
	To   DocumentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
