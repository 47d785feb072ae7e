package entities

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrParsing         = errors.New("parsing failed")
	ErrUpstream        = errors.New("upstream rate source unavailable")
	ErrUpstreamTimeout = errors.New("upstream rate source timed out")
	ErrInterruptedWait = errors.New("throttle wait interrupted")
)

// StatusError is a non-2xx answer from the upstream rate source.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream responded %d %s", e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUpstream
}

// Retryable reports whether a repeated request may succeed.
func (e *StatusError) Retryable() bool {
	return e.Code >= http.StatusInternalServerError
}
