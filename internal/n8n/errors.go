package n8n

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed workflow fetch.
type Kind string

const (
	KindAuth       Kind = "auth"
	KindPermission Kind = "permission"
	KindNotFound   Kind = "not_found"
	KindHTTP       Kind = "http"
	KindTimeout    Kind = "timeout"
	KindNetwork    Kind = "network"
)

// Sentinel markers matched by errors.Is against a *FetchError of the same kind.
var (
	ErrAuth       = errors.New("n8n authentication failed")
	ErrPermission = errors.New("n8n permission denied")
	ErrNotFound   = errors.New("n8n api not found")
	ErrHTTP       = errors.New("n8n http error")
	ErrTimeout    = errors.New("n8n request timed out")
	ErrNetwork    = errors.New("n8n network error")
)

var kindMarkers = map[Kind]error{
	KindAuth:       ErrAuth,
	KindPermission: ErrPermission,
	KindNotFound:   ErrNotFound,
	KindHTTP:       ErrHTTP,
	KindTimeout:    ErrTimeout,
	KindNetwork:    ErrNetwork,
}

// FetchError is the only error type returned by the fetch path.
type FetchError struct {
	Kind    Kind
	Status  int // HTTP status when one was received
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch workflows: %s: %v", msg, e.Err)
	}
	return "fetch workflows: " + msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel marker for e.Kind.
func (e *FetchError) Is(target error) bool {
	if e == nil {
		return false
	}
	marker, ok := kindMarkers[e.Kind]
	return ok && marker == target
}

// Hint returns a user-facing explanation of the failure.
func (e *FetchError) Hint() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindAuth:
		return "Invalid API key. Please check your settings."
	case KindPermission:
		return "Access denied. Please check your API key permissions."
	case KindNotFound:
		return "API endpoint not found. Please check your n8n URL."
	case KindTimeout:
		return "Request timeout. Please check your connection."
	case KindNetwork:
		return "Network error. Please check if your n8n instance is accessible."
	default:
		if e.Status > 0 {
			return fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
		}
		return e.Message
	}
}

// AsFetchError extracts a *FetchError from err.
func AsFetchError(err error) (*FetchError, bool) {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr, true
	}
	return nil, false
}

func statusError(status int, detail string) *FetchError {
	kind := KindHTTP
	switch status {
	case http.StatusUnauthorized:
		kind = KindAuth
	case http.StatusForbidden:
		kind = KindPermission
	case http.StatusNotFound:
		kind = KindNotFound
	}
	msg := fmt.Sprintf("HTTP %d", status)
	if text := http.StatusText(status); text != "" {
		msg += " " + text
	}
	if detail != "" {
		msg += ": " + detail
	}
	return &FetchError{Kind: kind, Status: status, Message: msg}
}
