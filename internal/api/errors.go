package api

import (
	"errors"
	"fmt"
)

// Common API errors. Every client method returns one of these (possibly
// wrapped) instead of a raw transport error.
var (
	// ErrRateLimited indicates a 429 response. Not retriable; the user must wait.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates a 402 response. Not retriable until the daily reset.
	ErrQuotaExceeded = errors.New("daily quota exceeded")

	// ErrNotFound indicates a 404 response. Terminal, never retried.
	ErrNotFound = errors.New("presentation not found")
)

// ValidationError indicates the backend rejected the request body (400).
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "invalid request"
	}
	return e.Detail
}

// HTTPError is any other non-2xx response.
type HTTPError struct {
	Op     string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: HTTP error %d", e.Op, e.Status)
}

// TransportError wraps a network-level failure (connection refused, timeout).
// Retriable up to a small fixed bound, depending on the operation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// GenerationError is a server-reported terminal generation failure.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	if e.Message == "" {
		return "Generation failed"
	}
	return e.Message
}

// IsRateLimited checks if an error is a rate limit error.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsQuotaExceeded checks if an error is a quota error.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Retriable reports whether an error may be retried. Rate limit, quota,
// validation and not-found errors are terminal for their request.
func Retriable(err error) bool {
	if err == nil {
		return false
	}
	if IsRateLimited(err) || IsQuotaExceeded(err) || IsNotFound(err) {
		return false
	}
	var verr *ValidationError
	return !errors.As(err, &verr)
}
