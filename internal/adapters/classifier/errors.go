package classifier

import (
	"errors"
	"fmt"
)

// ErrNotFound means the classifier has no result for the player yet. It is
// the normal empty state of the last-swing endpoint.
var ErrNotFound = errors.New("no swing yet")

// TransportError wraps network and timeout failures.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("classifier %s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a non-success or unreadable response. Body carries the
// server's detail; Err is set when a 2xx body failed to decode.
type ServerError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *ServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classifier %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("classifier %s: status %d: %s", e.Op, e.Status, e.Body)
}

func (e *ServerError) Unwrap() error { return e.Err }

// Kind classifies err for metrics labels.
func Kind(err error) string {
	var te *TransportError
	var se *ServerError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &te):
		return "transport_error"
	case errors.As(err, &se):
		return "server_error"
	default:
		return "error"
	}
}
