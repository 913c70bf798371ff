package domain

import "fmt"

// TransportError wraps a network-level failure (DNS, TLS, connection
// reset) while talking to an upstream provider.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamHTTPError is a non-2xx response from an upstream provider.
type UpstreamHTTPError struct {
	Provider   string
	StatusCode int
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("%s: upstream returned status %d", e.Provider, e.StatusCode)
}

// UpstreamSchemaError means the upstream returned JSON that does not
// match the expected shape (missing keys, wrong types, unparsable
// numeric strings).
type UpstreamSchemaError struct {
	Provider string
	Reason   string
}

func (e *UpstreamSchemaError) Error() string {
	return fmt.Sprintf("%s: unexpected response shape: %s", e.Provider, e.Reason)
}

// StreamError is a WebSocket-level failure on a streaming subscription.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error: %v", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }
