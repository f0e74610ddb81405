package models

import "errors"

var (

	// storage errors
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrRoleViolation  = errors.New("only student accounts can be deleted")

	// validation errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
	ErrInvalidAmount    = errors.New("points must be an integer between 1 and 100")
	ErrMissingField     = errors.New("title and content are required")

	// auth errors
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrForbidden          = errors.New("access denied")

	// ledger errors
	ErrNotAStudent = errors.New("points can only be awarded to students")
)
