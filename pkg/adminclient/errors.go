package adminclient

import (
	"errors"
	"fmt"
)

// ErrConnectionRefused matches a *ConnectionError caused by nothing listening
// on the admin port.
var ErrConnectionRefused = errors.New("connection refused")

// ConnectionError is returned when the request never reached the server.
type ConnectionError struct {
	URL     string
	Err     error
	refused bool
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to admin API at %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConnectionRefused and the connection was
// refused.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionRefused && e.refused
}

// Refused reports whether the server actively refused the connection.
func (e *ConnectionError) Refused() bool {
	return e.refused
}

// APIError is returned when the admin API answers with a non-success status.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("admin API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("admin API returned status %d: %s", e.StatusCode, e.Body)
}

func newConnectionError(url string, err error) *ConnectionError {
	return &ConnectionError{URL: url, Err: err, refused: isConnRefused(err)}
}
