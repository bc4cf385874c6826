package lifecycle

import "errors"

var (
	// ErrNoPhone means the account has no verified phone number; one
	// must be added and SMS-confirmed before enrolling.
	ErrNoPhone = errors.New("no phone number on the account")

	// ErrDuplicateRequest means an authenticator is already attached.
	// The existing one has to be revoked before enrolling again.
	ErrDuplicateRequest = errors.New("an authenticator is already attached to this account")

	// ErrBadSMSCode means the activation code was rejected; the user
	// may re-enter it and finalize again.
	ErrBadSMSCode = errors.New("bad sms code")

	// ErrCodeMismatch means the server kept rejecting generated guard
	// codes during finalization, usually a clock problem.
	ErrCodeMismatch = errors.New("could not produce a guard code the server accepts")
)
