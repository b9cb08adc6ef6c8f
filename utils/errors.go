package utils

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError and decides the HTTP status it maps to.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindRoleMismatch
	KindNotFound
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindRoleMismatch:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AppError is an error with a caller facing message.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError of the same kind, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Message == "" && t.Kind == e.Kind
}

var (
	ErrValidation   = &AppError{Kind: KindValidation}
	ErrConflict     = &AppError{Kind: KindConflict}
	ErrAuth         = &AppError{Kind: KindAuth}
	ErrRoleMismatch = &AppError{Kind: KindRoleMismatch}
	ErrNotFound     = &AppError{Kind: KindNotFound}
)

func ValidationError(msg string) error { return &AppError{Kind: KindValidation, Message: msg} }

func ConflictError(msg string) error { return &AppError{Kind: KindConflict, Message: msg} }

func AuthError(msg string) error { return &AppError{Kind: KindAuth, Message: msg} }

func RoleMismatchError(msg string) error { return &AppError{Kind: KindRoleMismatch, Message: msg} }

func NotFoundError(msg string) error { return &AppError{Kind: KindNotFound, Message: msg} }

// InternalError wraps an unexpected failure. msg is what the caller sees.
func InternalError(msg string, err error) error {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err; anything that is not an AppError is internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// PublicMessage returns the message safe to show to a client.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Internal server error"
}
