package login

import (
	"encoding/json"
	"errors"
	"strconv"
)

// Answers accumulates the challenge responses gathered so far. The
// server re-validates all of them on every submission, so nothing is
// cleared between rounds.
type Answers struct {
	CaptchaGID    string
	CaptchaText   string
	EmailCode     string
	EmailSteamID  uint64
	TwoFactorCode string
}

// Status classifies a dologin response.
type Status int

const (
	StatusOK Status = iota
	StatusBadCredentials
	StatusCaptchaNeeded
	StatusEmailCodeNeeded
	StatusTwoFactorNeeded
)

// Outcome is one decoded dologin round.
type Outcome struct {
	Status       Status
	Message      string
	CaptchaGID   string
	EmailSteamID uint64
	EmailDomain  string

	// Set when Status is StatusOK.
	OAuthToken       string
	SteamID          uint64
	SteamLogin       string
	SteamLoginSecure string
	WebCookie        string
}

// Wire responses.

type rsaResponse struct {
	Success   bool   `json:"success"`
	Modulus   string `json:"publickey_mod"`
	Exponent  string `json:"publickey_exp"`
	Timestamp string `json:"timestamp"`
}

type loginResponse struct {
	Success         bool         `json:"success"`
	LoginComplete   bool         `json:"login_complete"`
	Message         string       `json:"message"`
	CaptchaNeeded   bool         `json:"captcha_needed"`
	CaptchaGID      uniStr       `json:"captcha_gid"`
	EmailAuthNeeded bool         `json:"emailauth_needed"`
	EmailDomain     string       `json:"emaildomain"`
	EmailSteamID    uint64       `json:"emailsteamid,string"`
	TwoFactorNeeded bool         `json:"requires_twofactor"`
	OAuth           *oauthResult `json:"oauth"`
}

type oauthResult struct {
	SteamID          uint64 `json:"steamid,string"`
	OAuthToken       string `json:"oauth_token"`
	SteamLogin       string `json:"wgtoken"`
	SteamLoginSecure string `json:"wgtoken_secure"`
	WebCookie        string `json:"webcookie"`
}

// The oauth transfer parameters arrive as a JSON string containing
// JSON, so unmarshalling needs an unquote round first.
func (o *oauthResult) UnmarshalJSON(data []byte) error {
	if len(data) < 4 {
		return nil
	}
	unquoted, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("failed to unquote oauth data")
	}
	type alias oauthResult
	return json.Unmarshal([]byte(unquoted), (*alias)(o))
}

// uniStr tolerates fields that are a string in normal operation but a
// number when the server reports an error.
type uniStr string

func (s *uniStr) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		*s = uniStr(string(data))
		return nil
	}
	var aux string
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = uniStr(aux)
	return nil
}

func (s uniStr) String() string { return string(s) }
