package errors

import "campus/internal/shared/apperror"

var (
	ErrMissingCredentials = apperror.Invariant("Email and password are required.")
	ErrUnknownRole        = apperror.Invariant("Role must be teacher or student.")
	ErrEmailTaken         = apperror.Invariant("Email already in use.")
	ErrUsernameTaken      = apperror.Invariant("Username already in use.")
	ErrInvalidCredentials = apperror.Unauthenticated("Invalid email or password.")
	ErrInvalidSession     = apperror.Unauthenticated("Invalid or expired session token.")
)
