// Package lifecycle attaches and detaches the mobile authenticator on
// an account: phone prerequisites, enrollment, finalization, revocation
// and backup codes.
package lifecycle

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"

	"github.com/PMArkive/PySteamAuth/community"
	"github.com/PMArkive/PySteamAuth/guard"
	"github.com/PMArkive/PySteamAuth/mafile"
	"github.com/PMArkive/PySteamAuth/session"
)

// finalizeAttempts bounds the want_more resubmission loop; each round
// burns one 30-second code window.
const finalizeAttempts = 30

// Linker drives one enrollment attempt. The device identifier is
// generated on construction and must stay with the account's secrets
// for the rest of the authenticator's life, so a fresh Linker is needed
// per attempt.
type Linker struct {
	client        *http.Client
	communityBase string
	apiBase       string

	session  *session.Session
	deviceID string
	timeNow  func() int64
}

func NewLinker(sess *session.Session, aligner *guard.TimeAligner) *Linker {
	return &Linker{
		client:        new(http.Client),
		communityBase: community.CommunityBase,
		apiBase:       community.APIBase,
		session:       sess,
		deviceID:      community.GenerateDeviceID(),
		timeNow:       aligner.Time,
	}
}

// SetBaseURLs overrides the community and API bases, mainly for tests
// and proxies.
func (l *Linker) SetBaseURLs(communityBase, apiBase string) {
	l.communityBase = communityBase
	l.apiBase = apiBase
}

func (l *Linker) SetProxy(proxy string) error {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return err
	}
	l.client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	return nil
}

// DeviceID returns the identifier this attempt enrolls under.
func (l *Linker) DeviceID() string {
	return l.deviceID
}

// HasPhone reports whether the account has a verified phone number.
func (l *Linker) HasPhone() (bool, error) {
	body, err := l.phoneAjax("has_phone", "null")
	if err != nil {
		return false, err
	}
	var r struct {
		HasPhone bool `json:"has_phone"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return false, fmt.Errorf("%w: %v", community.ErrMalformedResponse, err)
	}
	return r.HasPhone, nil
}

// AddPhone registers a phone number on the account. Steam sends a
// verification SMS which ConfirmPhone must answer before enrollment.
func (l *Linker) AddPhone(number string) error {
	body, err := l.phoneAjax("add_phone_number", number)
	if err != nil {
		return err
	}
	return decodeSuccess(body)
}

// ConfirmPhone submits the SMS verification code for a number added
// with AddPhone.
func (l *Linker) ConfirmPhone(smsCode string) error {
	body, err := l.phoneAjax("check_sms_code", smsCode)
	if err != nil {
		return err
	}
	return decodeSuccess(body)
}

// Enroll requests a new authenticator for the account. On success the
// returned bundle carries the secrets and the revocation code, which
// must be shown to the user before Finalize; until Finalize succeeds
// the authenticator is not active.
func (l *Linker) Enroll() (*mafile.SecretBundle, error) {
	form := url.Values{
		"access_token":       {l.session.OAuthToken},
		"steamid":            {strconv.FormatUint(l.session.SteamID, 10)},
		"authenticator_type": {"1"},
		"device_identifier":  {l.deviceID},
		"sms_phone_id":       {"1"},
	}
	body, err := community.MobileRequest(l.client, http.MethodPost,
		l.apiBase+community.PathAddAuthenticator, form, nil)
	if err != nil {
		return nil, err
	}

	var r struct {
		Response *mafile.SecretBundle `json:"response"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", community.ErrMalformedResponse, err)
	}
	if r.Response == nil {
		return nil, fmt.Errorf("%w: empty add authenticator response", community.ErrMalformedResponse)
	}
	switch r.Response.Status {
	case 1:
	case 29:
		return nil, ErrDuplicateRequest
	default:
		return nil, fmt.Errorf("add authenticator failed with status %d", r.Response.Status)
	}

	r.Response.DeviceID = l.deviceID
	r.Response.Session = l.session
	return r.Response, nil
}

// Finalize activates the enrolled authenticator with the SMS code sent
// to the account's phone. When the server asks for more codes it is
// verifying the shared secret; resubmission is bounded, one code per
// window.
func (l *Linker) Finalize(bundle *mafile.SecretBundle, smsCode string) error {
	form := url.Values{
		"steamid":            {strconv.FormatUint(l.session.SteamID, 10)},
		"access_token":       {l.session.OAuthToken},
		"activation_code":    {smsCode},
		"authenticator_code": {""},
	}

	smsAccepted := false
	for tries := 0; tries <= finalizeAttempts; tries++ {
		if tries != 0 {
			code, err := guard.Code(bundle.SharedSecret, l.timeNow())
			if err != nil {
				return err
			}
			form.Set("authenticator_code", code)
		}
		form.Set("authenticator_time", strconv.FormatInt(l.timeNow(), 10))
		if smsAccepted {
			form.Set("activation_code", "")
		}

		body, err := community.MobileRequest(l.client, http.MethodPost,
			l.apiBase+community.PathFinalizeAuthenticator, form, nil)
		if err != nil {
			return err
		}

		var r struct {
			Response *struct {
				Status   int32 `json:"status"`
				WantMore bool  `json:"want_more"`
				Success  bool  `json:"success"`
			} `json:"response"`
		}
		if err := json.Unmarshal(body, &r); err != nil {
			return fmt.Errorf("%w: %v", community.ErrMalformedResponse, err)
		}
		if r.Response == nil {
			return fmt.Errorf("%w: empty finalize response", community.ErrMalformedResponse)
		}

		if r.Response.Status == 89 {
			return ErrBadSMSCode
		}
		if r.Response.Status == 88 && tries >= finalizeAttempts {
			return ErrCodeMismatch
		}
		if !r.Response.Success {
			return fmt.Errorf("finalize failed with status %d", r.Response.Status)
		}
		if r.Response.WantMore {
			smsAccepted = true
			continue
		}

		bundle.FullyEnrolled = true
		return nil
	}

	return ErrCodeMismatch
}

// RevokeExisting removes the authenticator already attached to the
// account, for the duplicate-enrollment path where the user still holds
// its revocation code.
func (l *Linker) RevokeExisting(revocationCode string) error {
	return removeAuthenticator(l.client, l.apiBase, l.session, revocationCode)
}

// phoneAjax runs one op against the phone endpoint with the session's
// cookies attached.
func (l *Linker) phoneAjax(op, arg string) ([]byte, error) {
	if err := l.applyCookies(); err != nil {
		return nil, err
	}
	form := url.Values{
		"op":        {op},
		"arg":       {arg},
		"sessionid": {l.session.SessionID},
	}
	return community.MobileRequest(l.client, http.MethodPost,
		l.communityBase+community.PathPhoneAjax, form, nil)
}

func (l *Linker) applyCookies() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	base, err := url.Parse(l.communityBase)
	if err != nil {
		return err
	}
	cookies := l.session.Cookies()
	if base.Host != "steamcommunity.com" {
		// Tests and proxies: drop the fixed domain so the jar accepts
		// the cookies for whatever host serves them.
		for _, cookie := range cookies {
			cookie.Domain = ""
			cookie.Secure = false
		}
	}
	jar.SetCookies(base, cookies)
	l.client.Jar = jar
	return nil
}

func decodeSuccess(body []byte) error {
	var r struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("%w: %v", community.ErrMalformedResponse, err)
	}
	if !r.Success {
		return errors.New("steam rejected the request")
	}
	return nil
}
