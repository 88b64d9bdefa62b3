package errors

import "errors"

var (
	ErrNotFound  = errors.New("space not found")
	ErrInvalidID = errors.New("invalid space ID format")
)
