package hue

import (
	"errors"
	"fmt"
	"strings"
)

// Domain-specific errors for the Hue client.
var (
	// ErrBridgeNotFound is returned when no bridge is configured under a name.
	ErrBridgeNotFound = errors.New("hue: bridge not found")

	// ErrResourceNotFound is returned when the bridge reports no resource
	// for an identifier.
	ErrResourceNotFound = errors.New("hue: resource not found")

	// ErrUnknownResource is returned for an unsupported resource type.
	ErrUnknownResource = errors.New("hue: unknown resource type")

	// ErrRequestFailed is returned when the bridge answers with a non-200 status.
	ErrRequestFailed = errors.New("hue: request failed")

	// ErrUnavailable is returned when the bridge cannot be reached.
	ErrUnavailable = errors.New("hue: bridge unavailable")

	// ErrInvalidResponse is returned when a bridge response cannot be decoded.
	ErrInvalidResponse = errors.New("hue: invalid response")

	// ErrSchemaMismatch is returned when a write object does not use the
	// write schema of its resource type.
	ErrSchemaMismatch = errors.New("hue: object schema does not match resource")

	// ErrInvalidConfig is returned when bridge configuration is unusable.
	ErrInvalidConfig = errors.New("hue: invalid configuration")
)

// APIError reports a non-200 response from a bridge. Descriptions holds the
// "description" of each entry in the response's errors array.
type APIError struct {
	Method       string
	Path         string
	Status       int
	Descriptions []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("hue: %s %s: status %d", e.Method, e.Path, e.Status)
	if len(e.Descriptions) > 0 {
		msg += ": " + strings.Join(e.Descriptions, "; ")
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return ErrRequestFailed
}
