package domain

import "errors"

// Error kinds surfaced to callers. Anything that does not wrap one of these
// is treated as an infrastructure failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error pairs a caller-facing message with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NewError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

func NotFoundError(message string) error {
	return NewError(ErrNotFound, message)
}

func ConflictError(message string) error {
	return NewError(ErrConflict, message)
}

func BadRequestError(message string) error {
	return NewError(ErrBadRequest, message)
}

func UnauthorizedError(message string) error {
	return NewError(ErrUnauthorized, message)
}

func ForbiddenError(message string) error {
	return NewError(ErrForbidden, message)
}
