package service

import (
	"errors"
	"fmt"
)

// Outcomes returned by the service layer. Callers match them with errors.Is;
// lower-level errors never cross this boundary without being wrapped in one of them.
var (
	ErrConflict     = errors.New("username or email already exists")
	ErrUnauthorized = errors.New("could not validate credentials")
	ErrNotFound     = errors.New("task not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// internal wraps a persistence or infrastructure failure as ErrInternal while
// keeping the cause available for logging.
func internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}
