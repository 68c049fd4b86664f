package errors

import "errors"

// CodeBookingInProgress marks a create rejected because another request
// held the item lock for the whole wait. It is distinct from a date
// conflict.
const CodeBookingInProgress = "BOOKING_IN_PROGRESS"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStatusChanged means a conditional status update matched no document
	// because the booking left the expected status first.
	ErrStatusChanged = errors.New("booking status changed concurrently")

	ErrLockHeld = errors.New("booking lock is held by another request")
)
