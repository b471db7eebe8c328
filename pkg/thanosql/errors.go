package thanosql

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// InvalidArgumentError reports a parameter combination rejected before any
// request was sent. Fields names the offending parameters.
type InvalidArgumentError struct {
	Fields []string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("invalid argument: %s", e.Reason)
	}
	return fmt.Sprintf("invalid argument (%s): %s", strings.Join(e.Fields, ", "), e.Reason)
}

// ConfigError reports missing client configuration at construction time.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing configuration: %s", strings.Join(e.Missing, ", "))
}

// DecodeError reports a response whose shape does not match the expected
// resource schema. Path points at the offending field.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// APIError is a business failure reported by the engine with a non-2xx
// status, such as a duplicate table name or a nonexistent resource.
type APIError struct {
	StatusCode  int
	Message     string
	ErrorResult string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("engine returned %d: %s", e.StatusCode, msg)
}

// TransportError is a network-level failure from the HTTP transport.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error on %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is an APIError for a missing resource.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

// IsAlreadyExists reports whether err is an APIError for a name conflict.
func IsAlreadyExists(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusConflict
}

var errMissingField = errors.New("required field is missing")
