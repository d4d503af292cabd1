package domain

import "errors"

// Sentinel errors shared by services and repositories. Handlers translate
// these into HTTP status codes with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrDuplicateUsername   = errors.New("username already exists")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrDuplicateReport     = errors.New("report id already exists")
	ErrAlreadyReacted      = errors.New("reaction already recorded")
	ErrConflictingReaction = errors.New("opposite reaction exists, remove it first")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)
