package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned before any network call when no upstream
	// key is configured.
	ErrMissingAPIKey = errors.New("upstream api key is not configured")

	// ErrUpstream matches every upstream failure via errors.Is.
	ErrUpstream = errors.New("upstream request failed")
)

// UpstreamHTTPError reports a non-2xx upstream status.
type UpstreamHTTPError struct {
	StatusCode int
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.StatusCode)
}

func (e *UpstreamHTTPError) Is(target error) bool {
	return target == ErrUpstream
}

// UpstreamDataError reports an envelope whose code is not the success
// sentinel or whose result payload is absent or malformed.
type UpstreamDataError struct {
	Code    int
	Message string
}

func (e *UpstreamDataError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned unusable data (code %d)", e.Code)
	}
	return fmt.Sprintf("upstream returned unusable data (code %d): %s", e.Code, e.Message)
}

func (e *UpstreamDataError) Is(target error) bool {
	return target == ErrUpstream
}

// TransportError wraps network level failures: timeouts, DNS, TLS.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrUpstream
}
