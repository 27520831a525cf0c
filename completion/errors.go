package completion

import "fmt"

// EncodingError reports that a request could not be serialized. It is raised
// before any bytes leave the process.
type EncodingError struct {
	Err error
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("completion: encode request: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *EncodingError) Unwrap() error { return e.Err }

// TransportError reports a failed HTTP exchange: either the request never
// completed (Err set) or the server answered with a non-success status
// (StatusCode set, Body holding a capped copy of the response).
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion: transport: %v", e.Err)
	}
	return fmt.Sprintf("completion: server returned status %d: %s", e.StatusCode, e.Body)
}

// Unwrap returns the underlying error, if any.
func (e *TransportError) Unwrap() error { return e.Err }
