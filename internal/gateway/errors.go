package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure. Server responses may carry their own
// kind string (INVALID_CREDENTIALS, EMAIL_EXISTS, ...) which is passed
// through verbatim; the constants below are the ones the client itself
// produces or branches on.
type Kind string

const (
	KindNetwork      Kind = "NETWORK_ERROR"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindValidation   Kind = "VALIDATION_ERROR"
	KindServer       Kind = "SERVER_ERROR"
)

// Error is the failure type returned by every gateway call.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 for transport failures
	Message string // human-readable, server-supplied when available
	Raw     []byte // raw response payload, nil for transport failures
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("gateway: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("gateway: %s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is a gateway *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.Kind == kind
}

// IsUnauthorized reports a forced-logout failure.
func IsUnauthorized(err error) bool { return IsKind(err, KindUnauthorized) }

// IsNetwork reports a transport-level failure.
func IsNetwork(err error) bool { return IsKind(err, KindNetwork) }
