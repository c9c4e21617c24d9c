package errors

import "errors"

var (
	ErrNotFound = errors.New("marketplace item not found")

	ErrInvalidID = errors.New("invalid marketplace item ID format")

	ErrFlagNotFound = errors.New("flag not found")

	// ErrFlagResolved is returned when a flag has already been resolved.
	ErrFlagResolved = errors.New("flag already resolved")

	// ErrStatusChanged means the item left the expected status between read and write.
	ErrStatusChanged = errors.New("item status changed concurrently")
)
