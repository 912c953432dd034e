package session

import (
	"errors"
)

var (
	// ErrInvalidInput is returned when login is attempted without an id or password.
	ErrInvalidInput = errors.New("session: invalid input")
	// ErrRejected is returned when the backend refuses the credentials.
	ErrRejected = errors.New("session: rejected")
	// ErrNetwork is returned when the backend could not be reached or answered garbage.
	ErrNetwork = errors.New("session: network")
	// ErrStorage is returned when the session could not be persisted.
	ErrStorage = errors.New("session: storage")
)

// DefaultRejectionMessage is reported when the backend gives no reason.
const DefaultRejectionMessage = "Authentication failed"

// AuthError is the structured failure of a login attempt.
type AuthError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil && e.Message == "" {
		return e.Kind.Error() + ": " + e.Err.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

// Is matches the error against its kind sentinel.
func (e *AuthError) Is(target error) bool {
	return e != nil && e.Kind == target
}

func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Rejection is implemented by backend errors that carry a user-facing refusal.
type Rejection interface {
	error
	RejectionMessage() string
}

// ErrorKind maps session errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrRejected):
		return "rejected"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrStorage):
		return "storage"
	}
	return "unexpected"
}
