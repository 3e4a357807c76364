package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrPayloadTooLarge  = errors.New("payload too large")
)

// AppError carries a sentinel for classification plus a human-readable
// message that is safe to return to the client.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Unauthenticated(message string) *AppError {
	return &AppError{Err: ErrUnauthenticated, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

func Invalid(message string) *AppError {
	return &AppError{Err: ErrInvalidArgument, Message: message}
}

func CapacityExceeded(message string) *AppError {
	return &AppError{Err: ErrCapacityExceeded, Message: message}
}

func PayloadTooLarge(message string) *AppError {
	return &AppError{Err: ErrPayloadTooLarge, Message: message}
}
