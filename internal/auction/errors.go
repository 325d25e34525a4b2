package auction

import "errors"

// Lookup errors
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrUserNotFound    = errors.New("user not found")
)

// Policy and state-machine errors
var (
	ErrForbidden     = errors.New("operation forbidden for this user")
	ErrListingClosed = errors.New("listing is closed")
)

// Input errors; the request that carried the input can be re-rendered and retried.
var (
	ErrInvalidBid = errors.New("invalid bid")
	ErrValidation = errors.New("invalid input")
)
