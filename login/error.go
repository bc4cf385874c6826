package login

import "errors"

var (
	// ErrMissingCredentials is a validation failure, surfaced to the
	// user as a message; the flow stays in AwaitingCredentials.
	ErrMissingCredentials = errors.New("username and password required")

	// ErrNoOAuth means login completed but the server returned no
	// oauth transfer parameters. Protocol-level failure.
	ErrNoOAuth = errors.New("steam returned no oauth data")

	// ErrBadRSA means the getrsakey call failed; usually transient.
	ErrBadRSA = errors.New("failed to get RSA key")
)
