package fetcher

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("source payload not found")
	ErrTimeout     = errors.New("source fetch timed out")
	ErrTransport   = errors.New("source transport error")
	ErrNoTransport = errors.New("source has neither a url nor a file path")
	ErrTooLarge    = errors.New("source payload exceeds size limit")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("source responded with HTTP %d", e.Code)
	}
	return fmt.Sprintf("source responded with HTTP %d: %s", e.Code, e.Body)
}
