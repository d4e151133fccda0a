package catalogapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Error kinds returned (wrapped) by the client.
var (
	ErrNotFound     = errors.New("catalogapi: not found")
	ErrUnauthorized = errors.New("catalogapi: unauthorized")
	ErrBadRequest   = errors.New("catalogapi: bad request")
	ErrUnavailable  = errors.New("catalogapi: service unavailable")
	ErrTimeout      = errors.New("catalogapi: timed out")
)

// StatusError is a non-2xx response from the catalog API.
type StatusError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "no message"
	}
	return fmt.Sprintf("catalogapi: %s %s: %d %s", e.Method, e.URL, e.StatusCode, msg)
}

// Unwrap lets errors.Is match the status class.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == 404:
		return ErrNotFound
	case e.StatusCode == 401 || e.StatusCode == 403:
		return ErrUnauthorized
	case e.StatusCode >= 500:
		return ErrUnavailable
	default:
		return ErrBadRequest
	}
}

// transportError classifies errors raised before a response arrived.
type transportError struct {
	kind error
	err  error
}

func (e *transportError) Error() string { return e.kind.Error() + ": " + e.err.Error() }

func (e *transportError) Is(target error) bool { return target == e.kind }

func (e *transportError) Unwrap() error { return e.err }

// mapError translates transport and context errors into the client's
// error kinds while keeping the original cause reachable.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var se *StatusError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &transportError{kind: ErrTimeout, err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &transportError{kind: ErrTimeout, err: err}
	}
	// Connection refused, DNS failures, resets.
	return &transportError{kind: ErrUnavailable, err: err}
}

// errorMessage extracts a human message from an error body, preferring
// a JSON "message" or "error" field.
func errorMessage(body []byte) string {
	var wrapped struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &wrapped) == nil {
		if wrapped.Message != "" {
			return wrapped.Message
		}
		if wrapped.Error != "" {
			return wrapped.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
