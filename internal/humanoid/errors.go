package humanoid

import "errors"

var (
	// ErrDriverDisconnected reports that the browser session is gone.
	ErrDriverDisconnected = errors.New("humanoid: driver disconnected")
	// ErrGeometryUnavailable reports that no box could be resolved for a target.
	ErrGeometryUnavailable = errors.New("humanoid: element geometry unavailable")
)
