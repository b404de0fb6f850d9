package domain

import (
	"errors"
	"fmt"
)

// ErrUpstream matches every failure of the upstream pricing API.
var ErrUpstream = errors.New("upstream error")

// UpstreamStatusError is returned when the pricing API answers with a non-200 status.
type UpstreamStatusError struct {
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("API returned status %d", e.StatusCode)
}

func (e *UpstreamStatusError) Is(target error) bool { return target == ErrUpstream }

// UpstreamParseError is returned when the body is not JSON or lacks expected fields.
type UpstreamParseError struct {
	Err error
}

func (e *UpstreamParseError) Error() string {
	return fmt.Sprintf("failed to parse API response: %v", e.Err)
}

func (e *UpstreamParseError) Unwrap() error { return e.Err }

func (e *UpstreamParseError) Is(target error) bool { return target == ErrUpstream }

// TransportError wraps connection-level failures (DNS, TLS, timeouts).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to pricing API failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrUpstream }
