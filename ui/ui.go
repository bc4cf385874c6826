// Package ui defines the user interaction surface the protocol core
// prompts through, plus a terminal implementation.
package ui

import "errors"

// ErrCancelled is returned from any prompt the user backs out of. It is
// a clean abort, not a failure; callers check it with errors.Is and
// stop whatever flow was in progress without reporting an error.
var ErrCancelled = errors.New("cancelled by user")

type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// CodeKind tells the prompt which kind of code the flow is waiting for.
type CodeKind int

const (
	CodeEmail CodeKind = iota
	CodeTwoFactor
	CodeSMS
	CodeRevocation
	CodePhoneNumber
)

func (k CodeKind) String() string {
	switch k {
	case CodeEmail:
		return "email code"
	case CodeTwoFactor:
		return "two-factor code"
	case CodeSMS:
		return "SMS code"
	case CodeRevocation:
		return "revocation code"
	case CodePhoneNumber:
		return "phone number"
	default:
		return "code"
	}
}

// Prompter is implemented by whatever front end drives the flows. All
// prompts block until the user answers or cancels.
type Prompter interface {
	// Credentials asks for a username and password. A non-empty
	// username is fixed by the caller and must not be changed.
	Credentials(username string) (user, password string, err error)
	Code(kind CodeKind) (string, error)
	Captcha(image []byte) (string, error)
	Confirm(message string) (bool, error)
	Notify(message string, severity Severity)
}
