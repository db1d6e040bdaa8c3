package ports

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus matches any *StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrMissingCursor is returned when a streams header carries no
	// nextSequence.
	ErrMissingCursor = errors.New("streams header has no nextSequence")
	// ErrWrongNamespace is returned for documents outside the expected
	// MTConnect schema.
	ErrWrongNamespace = errors.New("unexpected document namespace")
)

// StatusError reports a non-200 response from a remote endpoint.
type StatusError struct {
	URL    string
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.URL, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.URL, e.Code)
}

func (e *StatusError) Is(target error) bool { return target == ErrUnexpectedStatus }
