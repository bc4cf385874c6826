package guard

import "errors"

// ErrInvalidSecret is returned when a shared or identity secret is
// empty or not valid base64. Codes are never silently zeroed.
var ErrInvalidSecret = errors.New("invalid secret")
