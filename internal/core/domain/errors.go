package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a server or target could not be matched to the topology.
	ErrNotFound = errors.New("not found")

	// ErrDataUnavailable indicates the inventory could not be fetched or was empty.
	ErrDataUnavailable = errors.New("inventory data unavailable")

	// ErrInvalidTarget indicates an empty or unusable target string.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrInvalidRequest indicates an analysis request that failed validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// ResolutionError reports why a server or target could not be placed in the topology.
type ResolutionError struct {
	Subject string // "server" or "target"
	Query   string
	Reason  string
}

func (e *ResolutionError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("%s not found: %s", e.Subject, e.Reason)
	}
	return fmt.Sprintf("%s %q not found: %s", e.Subject, e.Query, e.Reason)
}

func (e *ResolutionError) Unwrap() error {
	return ErrNotFound
}
