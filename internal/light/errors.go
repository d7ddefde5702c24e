package light

import "errors"

// Device errors. Returned errors wrap one of these and name the light's
// address; check with errors.Is().
var (
	// ErrDeviceUnreachable means the HTTP exchange failed at the connection level.
	ErrDeviceUnreachable = errors.New("light: device unreachable")

	// ErrMalformedResponse means the light replied with a body that is not a
	// status document.
	ErrMalformedResponse = errors.New("light: malformed response")

	// ErrEmptyResponse means the light reported zero lights.
	ErrEmptyResponse = errors.New("light: device reported no lights")

	// ErrUnexpectedStatus means the light answered with a non-2xx HTTP status.
	ErrUnexpectedStatus = errors.New("light: unexpected HTTP status")

	// ErrOutOfRange is returned by the validators for user-supplied values.
	ErrOutOfRange = errors.New("light: value out of range")
)
