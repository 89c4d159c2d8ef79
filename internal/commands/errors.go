package commands

import "errors"

// ErrQuit is returned by Exec after a command that ends the session.
var ErrQuit = errors.New("quit")

// UserError represents an error that should be displayed to the user.
// These are not system failures - just invalid input or usage.
type UserError struct {
	Command string
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a user-facing error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}

// IsUserError reports whether err should be shown to the user verbatim.
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}
