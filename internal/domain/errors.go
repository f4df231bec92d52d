package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenNotFound is returned by a TokenProvider when the shop has no usable access token
	ErrTokenNotFound = errors.New("access token not found")

	// ErrSyncCancelled marks a run aborted by its caller or by shutdown
	ErrSyncCancelled = errors.New("sync cancelled")

	// ErrLeaseHeld is returned when another run holds the (shop, entity type) lease
	ErrLeaseHeld = errors.New("sync already in progress")

	// ErrLeaseLost is returned when a lease expired or was taken over while held
	ErrLeaseLost = errors.New("sync lease lost")

	// ErrRunTerminal is returned when a finished run is modified
	ErrRunTerminal = errors.New("sync run already finished")

	// ErrInvalidRecord marks a remote record that cannot be transformed
	ErrInvalidRecord = errors.New("invalid record")
)

// TransportError wraps every failure talking to the Shopify API: timeouts,
// non-success statuses, GraphQL errors and malformed responses
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("shopify %s failed with status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("shopify %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err carries a TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// InvalidRecordf builds an error wrapping ErrInvalidRecord
func InvalidRecordf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRecord, fmt.Sprintf(format, args...))
}
