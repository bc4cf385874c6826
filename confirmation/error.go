package confirmation

import "errors"

var (
	ErrCannotFindConfirmations = errors.New("unable to find confirmations")
	ErrCannotFindOffer         = errors.New("unable to find trade offer")

	// ErrRejected means the server refused an allow/deny. It covers the
	// whole batch; the server gives no per-item breakdown.
	ErrRejected = errors.New("confirmation rejected by steam")
)
