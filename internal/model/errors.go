package model

import (
	"errors"
	"fmt"
)

// Validation failures are raised before any network call; the remaining two
// kinds only after a round trip to the kinetics service.
var (
	ErrNoActiveSession    = errors.New("no active session, upload a mechanism first")
	ErrInvalidTemperature = errors.New("temperature must be a number greater than zero")
	ErrInvalidRange       = errors.New("temperature range must satisfy 0 <= t_low < t_high")
	ErrInvalidMode        = errors.New("plot mode must be \"reaction\" or \"progress\"")

	// ErrSessionReplaced marks a response that arrived after a newer upload
	// replaced the session it was issued for. The response is discarded.
	ErrSessionReplaced = errors.New("session replaced while request was in flight")
)

// InvalidInputError names the species whose concentration failed to parse or
// was negative.
type InvalidInputError struct {
	Species string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid concentration for species %q", e.Species)
}

// ServerRejectedError carries the reason string from a {status:"failed"}
// response body.
type ServerRejectedError struct {
	Reason string
}

func (e *ServerRejectedError) Error() string {
	return fmt.Sprintf("kinetics service rejected request: %s", e.Reason)
}

// TransportError covers everything below the application protocol: a non-200
// status (StatusCode set, no reason available) or a failed round trip
// (StatusCode zero, cause wrapped).
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("kinetics service returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("kinetics service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
