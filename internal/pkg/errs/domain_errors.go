package errs

import "errors"

// Sentinel errors shared across usecase layers
var (
	// Booking errors
	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingFinalized  = errors.New("booking already finalized")
	ErrBookingNotPending = errors.New("booking is not pending")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Storage errors
	ErrStorageUnavailable      = errors.New("storage unavailable")
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
