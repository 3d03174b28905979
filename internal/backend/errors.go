package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrBadRequest   = errors.New("backend: bad request")
	ErrUnauthorized = errors.New("backend: unauthorized")
	ErrForbidden    = errors.New("backend: forbidden")
	ErrNotFound     = errors.New("backend: not found")
	ErrConflict     = errors.New("backend: conflict")
	ErrServer       = errors.New("backend: server error")
	ErrRejected     = errors.New("backend: request rejected")
	ErrTransport    = errors.New("backend: transport failure")
	ErrDecode       = errors.New("backend: malformed response")
	ErrCircuitOpen  = errors.New("backend: circuit open")
)

// MsgAdminRequired replaces the message of a 403 from the users resource.
const MsgAdminRequired = "admin role required"

// APIError is a non-success answer from the backend. StatusCode 200 with
// ErrRejected means the envelope carried success=false.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("backend %s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode >= 200 && e.StatusCode < 300:
		return ErrRejected
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusConflict:
		return ErrConflict
	case e.StatusCode >= 500:
		return ErrServer
	default:
		return ErrBadRequest
	}
}

// Unauthorized flags a 401. The client does not act on it beyond counting.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized reports whether err carries a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

// Message returns the backend's user-facing message when err carries one.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return ""
}

func countsAsFailure(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrServer)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrTransport):
		return "transport_error"
	case errors.Is(err, ErrServer):
		return "server_error"
	default:
		return "client_error"
	}
}
