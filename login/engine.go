package login

import (
	"errors"

	"github.com/PMArkive/PySteamAuth/session"
	"github.com/PMArkive/PySteamAuth/ui"
)

// State of an in-progress login attempt.
type State int

const (
	AwaitingCredentials State = iota
	AwaitingCaptcha
	AwaitingEmailCode
	AwaitingTwoFactor
	Authenticated
	Cancelled
)

func (s State) String() string {
	switch s {
	case AwaitingCredentials:
		return "awaiting-credentials"
	case AwaitingCaptcha:
		return "awaiting-captcha"
	case AwaitingEmailCode:
		return "awaiting-email-code"
	case AwaitingTwoFactor:
		return "awaiting-two-factor"
	case Authenticated:
		return "authenticated"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Engine walks the password -> captcha/email/two-factor challenge flow.
// Each state has one entry prompt and a fixed set of outgoing
// transitions; the server decides which challenge comes next, and
// answers accumulate because every round re-validates all of them.
type Engine struct {
	conn     Conn
	prompter ui.Prompter

	// Fixed account binding: when username matches, codeSource
	// satisfies a two-factor challenge without prompting.
	username   string
	codeSource func() (string, error)

	state State
}

func NewEngine(conn Conn, prompter ui.Prompter) *Engine {
	return &Engine{conn: conn, prompter: prompter, state: AwaitingCredentials}
}

// BindAccount fixes the username and installs an automatic two-factor
// code source for it.
func (e *Engine) BindAccount(username string, codeSource func() (string, error)) {
	e.username = username
	e.codeSource = codeSource
}

func (e *Engine) State() State {
	return e.state
}

// Run drives the flow to a terminal state. It returns the new session
// on Authenticated, ui.ErrCancelled (and a nil session) on Cancelled,
// and the transport or protocol error when an attempt dies underway.
func (e *Engine) Run() (*session.Session, error) {
	var (
		user, password string
		answers        Answers
		autoCodeTried  bool
	)

	gather := func() (bool, error) {
		switch e.state {
		case AwaitingCredentials:
			u, p, err := e.prompter.Credentials(e.username)
			if err != nil {
				return false, err
			}
			if u == "" || p == "" {
				e.prompter.Notify("Username and password required.", ui.Warning)
				return false, nil
			}
			user, password = u, p

		case AwaitingCaptcha:
			img, err := e.conn.CaptchaImage(answers.CaptchaGID)
			if err != nil {
				return false, err
			}
			text, err := e.prompter.Captcha(img)
			if err != nil {
				return false, err
			}
			answers.CaptchaText = text

		case AwaitingEmailCode:
			code, err := e.prompter.Code(ui.CodeEmail)
			if err != nil {
				return false, err
			}
			answers.EmailCode = code

		case AwaitingTwoFactor:
			code, err := e.prompter.Code(ui.CodeTwoFactor)
			if err != nil {
				return false, err
			}
			answers.TwoFactorCode = code
		}
		return true, nil
	}

	resubmit := false
	for {
		if !resubmit {
			ready, err := gather()
			if err != nil {
				return e.cancel(err)
			}
			if !ready {
				continue
			}
		}
		resubmit = false

		outcome, err := e.conn.Login(user, password, answers)
		if errors.Is(err, ErrMissingCredentials) {
			e.prompter.Notify("Username and password required.", ui.Warning)
			e.state = AwaitingCredentials
			continue
		}
		if err != nil {
			// Transport or protocol failure is fatal for the attempt,
			// unlike a rejected credential or code.
			return nil, err
		}

		switch outcome.Status {
		case StatusOK:
			e.state = Authenticated
			sessionID, err := e.conn.SessionID()
			if err != nil {
				return nil, err
			}
			return &session.Session{
				SteamID:          outcome.SteamID,
				OAuthToken:       outcome.OAuthToken,
				SessionID:        sessionID,
				SteamLogin:       outcome.SteamLogin,
				SteamLoginSecure: outcome.SteamLoginSecure,
				WebCookie:        outcome.WebCookie,
			}, nil

		case StatusCaptchaNeeded:
			if e.state == AwaitingCaptcha {
				e.prompter.Notify("Incorrect captcha.", ui.Warning)
			}
			answers.CaptchaGID = outcome.CaptchaGID
			e.state = AwaitingCaptcha

		case StatusEmailCodeNeeded:
			if e.state == AwaitingEmailCode {
				e.prompter.Notify("Invalid code.", ui.Warning)
			}
			if outcome.EmailSteamID != 0 {
				answers.EmailSteamID = outcome.EmailSteamID
			}
			e.state = AwaitingEmailCode

		case StatusTwoFactorNeeded:
			// A bound account answers its own two-factor challenge, but
			// only once: a second demand means the generated code was
			// rejected and the user has to type one.
			if !autoCodeTried && e.codeSource != nil && user == e.username {
				autoCodeTried = true
				code, err := e.codeSource()
				if err == nil {
					answers.TwoFactorCode = code
					resubmit = true
					continue
				}
				e.prompter.Notify("Could not generate a login code: "+err.Error(), ui.Warning)
			} else if e.state == AwaitingTwoFactor {
				e.prompter.Notify("Invalid code.", ui.Warning)
			}
			e.state = AwaitingTwoFactor

		case StatusBadCredentials:
			e.prompter.Notify(outcome.Message, ui.Warning)
			e.state = AwaitingCredentials
		}
	}
}

func (e *Engine) cancel(err error) (*session.Session, error) {
	if errors.Is(err, ui.ErrCancelled) {
		e.state = Cancelled
		return nil, ui.ErrCancelled
	}
	return nil, err
}
