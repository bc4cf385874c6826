package community

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection wraps transport-level failures. Callers treat it as
	// recoverable: report, do not retry automatically.
	ErrConnection = errors.New("connection error")

	// ErrMalformedResponse marks a response whose shape the vendor
	// protocol does not allow; the server message, when present, is
	// attached verbatim.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError reports a non-200 response. Callers that need to
// classify (auth rejection versus server trouble) pull it out with
// errors.As.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Code)
}
