package http

import "fmt"

// HTTPError is returned for any response outside the 2xx range. Message
// carries the response body when the server sent one, otherwise the
// status text.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError is returned for transport-level failures: DNS resolution,
// connection refused, timeouts, cancelled contexts.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
