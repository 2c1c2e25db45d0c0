package core

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentials means usable OAuth credentials could not be obtained.
	// Fatal: nothing can proceed without valid auth.
	ErrCredentials = errors.New("credentials unavailable")

	// ErrLabelUnavailable means the processed marker could not be resolved
	// or created. Fatal: without the marker there is no way to guarantee a
	// message is labeled exactly once.
	ErrLabelUnavailable = errors.New("processed label unavailable")
)

// ProviderError wraps any failure surfaced by the mail provider. The triage
// loop treats all provider errors the same way: log, skip the affected
// message or cycle, retry on the next interval.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err with the provider operation that failed.
func NewProviderError(op string, err error) *ProviderError {
	return &ProviderError{Op: op, Err: err}
}

// IsProviderError reports whether err is (or wraps) a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
