package submission

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the student API.
type APIError struct {
	StatusCode int
	// Message is the server's "message" field, or "Server returned <code>".
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrNotJSON is wrapped in a TransportError when a 2xx response carries no
// JSON body.
var ErrNotJSON = errors.New("response body is not JSON")

// TransportError wraps a failure to reach the student API or to read a usable
// response from it.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Failed to submit form: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAPIError reports whether err carries an *APIError.
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}

// IsTransportError reports whether err carries a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
