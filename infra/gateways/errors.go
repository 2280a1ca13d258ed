package gateways

import (
	"errors"
	"fmt"
)

var (
	ErrLockBusy = errors.New("lock busy")
	ErrNetwork  = errors.New("network error")
)

func NewLockBusyError(details string) error {
	return fmt.Errorf("%w: %s", ErrLockBusy, details)
}

func NewNetworkError(details string) error {
	return fmt.Errorf("%w: %s", ErrNetwork, details)
}

// IsRetriable returns true for a contended lock or a failed round trip.
func IsRetriable(err error) bool {
	return err != nil && (errors.Is(err, ErrLockBusy) || errors.Is(err, ErrNetwork))
}
