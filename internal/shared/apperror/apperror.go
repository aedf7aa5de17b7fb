package apperror

import (
	"errors"
	"fmt"
)

// Kind sentinels. Handlers map these to HTTP status classes with errors.Is;
// the wrapped message is the user-visible string.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvariant       = errors.New("invariant violation")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Error carries one canonical user-facing message plus its kind.
type Error struct {
	kind    error
	message string
}

func (e *Error) Error() string { return e.message }

func (e *Error) Unwrap() error { return e.kind }

func NotFound(message string) error {
	return &Error{kind: ErrNotFound, message: message}
}

func NotFoundf(format string, args ...any) error {
	return &Error{kind: ErrNotFound, message: fmt.Sprintf(format, args...)}
}

func Invariant(message string) error {
	return &Error{kind: ErrInvariant, message: message}
}

func Invariantf(format string, args ...any) error {
	return &Error{kind: ErrInvariant, message: fmt.Sprintf(format, args...)}
}

func Forbidden(message string) error {
	return &Error{kind: ErrForbidden, message: message}
}

func Unauthenticated(message string) error {
	return &Error{kind: ErrUnauthenticated, message: message}
}
