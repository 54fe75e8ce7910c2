package service

import "errors"

// Error kinds returned by the services. Handlers match them with
// errors.Is and use Error() as the client-facing detail.
var (
	ErrValidation       = errors.New("invalid request")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnauthenticated  = errors.New("authentication required")
)

// Error carries a client-facing message together with its kind.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

func invalid(msg string) error         { return &Error{kind: ErrValidation, msg: msg} }
func denied(msg string) error          { return &Error{kind: ErrPermissionDenied, msg: msg} }
func unauthenticated(msg string) error { return &Error{kind: ErrUnauthenticated, msg: msg} }
