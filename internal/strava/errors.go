package strava

import (
	"errors"
	"fmt"
)

// ErrAuthExpired means the stored authorization can no longer be used and the user has to
// link the account again.
var ErrAuthExpired = errors.New("strava authorization expired")

var ErrUnknownState = errors.New("unknown or expired oauth state")

// TransportError is a failed call to the activity source that is not an authorization
// problem: network failures, timeouts, non-success statuses and undecodable bodies.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("strava transport error, status %d: %s", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("strava transport error: %s", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsTransportError(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}
