// Package httpx holds the shared plumbing for outbound API calls.
package httpx

import (
	"net/http"
	"time"
)

// UserAgent identifies the relay on every outbound request.
const UserAgent = "chdsbd/eve"

// DefaultTimeout bounds each outbound call when no override is configured.
const DefaultTimeout = 10 * time.Second

// NewClient builds the http.Client used by every remote API client.
// A zero timeout falls back to DefaultTimeout; calls are never unbounded.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Timeout: timeout,
	}
}

// TransportError marks a network-level failure (timeout, DNS, connection
// reset) as opposed to a non-success response from the remote host.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "transport error during " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
