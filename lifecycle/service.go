package lifecycle

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/PMArkive/PySteamAuth/community"
	"github.com/PMArkive/PySteamAuth/mafile"
	"github.com/PMArkive/PySteamAuth/session"
)

// Service covers the two-factor operations on an already enrolled
// account: revocation and emergency backup codes.
type Service struct {
	client  *http.Client
	apiBase string
}

func NewService() *Service {
	return &Service{
		client:  new(http.Client),
		apiBase: community.APIBase,
	}
}

// SetBaseURL overrides the API base, mainly for tests and proxies.
func (s *Service) SetBaseURL(base string) {
	s.apiBase = base
}

// Revoke detaches the authenticator. Steam places a 15 day trade hold
// on the account afterwards; that is information for the user, not a
// failure. Deleting the local secrets is the caller's job.
func (s *Service) Revoke(b *mafile.SecretBundle, revocationCode string) error {
	return removeAuthenticator(s.client, s.apiBase, b.Session, revocationCode)
}

// CreateBackupCodes starts backup code generation. Steam answers by
// texting a confirmation code to the account's phone, which
// CreateBackupCodesFinish submits.
func (s *Service) CreateBackupCodes(b *mafile.SecretBundle) error {
	form := url.Values{
		"access_token": {b.Session.OAuthToken},
	}
	body, err := community.MobileRequest(s.client, http.MethodPost,
		s.apiBase+community.PathCreateEmergencyCodes, form, nil)
	if err != nil {
		return err
	}
	var r struct {
		Response *struct{} `json:"response"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("%w: %v", community.ErrMalformedResponse, err)
	}
	return nil
}

// CreateBackupCodesFinish submits the SMS confirmation and returns the
// generated codes. An empty list means the code was wrong or the
// request expired.
func (s *Service) CreateBackupCodesFinish(b *mafile.SecretBundle, smsCode string) ([]string, error) {
	form := url.Values{
		"access_token": {b.Session.OAuthToken},
		"code":         {smsCode},
	}
	body, err := community.MobileRequest(s.client, http.MethodPost,
		s.apiBase+community.PathCreateEmergencyCodes, form, nil)
	if err != nil {
		return nil, err
	}
	var r struct {
		Response struct {
			Codes []string `json:"codes"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", community.ErrMalformedResponse, err)
	}
	return r.Response.Codes, nil
}

// DestroyBackupCodes invalidates every outstanding backup code.
func (s *Service) DestroyBackupCodes(b *mafile.SecretBundle) error {
	form := url.Values{
		"access_token": {b.Session.OAuthToken},
		"steamid":      {strconv.FormatUint(b.SteamID(), 10)},
	}
	body, err := community.MobileRequest(s.client, http.MethodPost,
		s.apiBase+community.PathDestroyEmergencyCodes, form, nil)
	if err != nil {
		return err
	}
	var r struct {
		Response *struct{} `json:"response"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("%w: %v", community.ErrMalformedResponse, err)
	}
	return nil
}

func removeAuthenticator(client *http.Client, apiBase string, sess *session.Session, revocationCode string) error {
	form := url.Values{
		"steamid":           {strconv.FormatUint(sess.SteamID, 10)},
		"steamguard_scheme": {"2"},
		"revocation_code":   {revocationCode},
		"access_token":      {sess.OAuthToken},
	}
	body, err := community.MobileRequest(client, http.MethodPost,
		apiBase+community.PathRemoveAuthenticator, form, nil)
	if err != nil {
		return err
	}

	var r struct {
		Response *struct {
			Success bool `json:"success"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("%w: %v", community.ErrMalformedResponse, err)
	}
	if r.Response == nil || !r.Response.Success {
		return errors.New("steam refused to remove the authenticator")
	}
	return nil
}
