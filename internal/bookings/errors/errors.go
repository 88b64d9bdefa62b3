package errors

import "errors"

var (
	ErrNotFound      = errors.New("booking not found")
	ErrInvalidID     = errors.New("invalid booking ID format")
	ErrSpaceNotFound = errors.New("space not found")

	// ErrAlreadyCancelled guards the one-shot seat restore: a booking whose
	// status is already cancelled must never release seats a second time.
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// ErrInsufficientAvailability means the conditional seat decrement matched
	// no document, i.e. the space has fewer desks left than requested.
	ErrInsufficientAvailability = errors.New("not enough desks available")

	// ErrStatusChanged means a conditional status update lost a race: the
	// booking no longer has the status the caller observed.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)
