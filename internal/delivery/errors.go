package delivery

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrDeliveryFailed = errors.New("welcomebot/delivery: all tiers exhausted")
	ErrEmptySet       = errors.New("welcomebot/delivery: resource set is empty")
	ErrNoResources    = errors.New("welcomebot/delivery: no tier has resources")
)

// FailedError is returned when every tier failed. It matches both
// ErrDeliveryFailed and the last attempt's error.
type FailedError struct {
	Attempts int
	Last     error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s after %d attempts: %v", ErrDeliveryFailed, e.Attempts, e.Last)
}

func (e *FailedError) Unwrap() []error {
	return []error{ErrDeliveryFailed, e.Last}
}
