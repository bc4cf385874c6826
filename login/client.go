// Package login drives the interactive Steam mobile login: the wire
// client that talks to getrsakey/dologin and the challenge state
// machine that feeds it.
package login

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/PMArkive/PySteamAuth/community"
)

// Conn is the wire surface the engine drives. Split out so the state
// machine can be exercised against a scripted fake.
type Conn interface {
	Login(username, password string, answers Answers) (*Outcome, error)
	CaptchaImage(gid string) ([]byte, error)
	SessionID() (string, error)
}

// Client performs mobile oauth logins against steamcommunity.com.
// One Client covers one login attempt; cookies persist between rounds.
type Client struct {
	client       *http.Client
	baseURL      string
	bootstrapped bool
}

func NewClient() *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		client:  &http.Client{Jar: jar},
		baseURL: community.CommunityBase,
	}
}

// SetBaseURL overrides the community base, mainly for tests and proxies.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

func (c *Client) SetProxy(proxy string) error {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return err
	}
	c.client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	return nil
}

// bootstrap primes the cookie jar the way the official app does before
// its first login request.
func (c *Client) bootstrap() error {
	if c.bootstrapped {
		return nil
	}
	if err := community.SetCookies(c.client, []*http.Cookie{
		{Name: community.CookieMobileClientVersion, Value: community.ClientVersion, Path: "/", Domain: ".steamcommunity.com"},
		{Name: community.CookieMobileClient, Value: "android", Path: "/", Domain: ".steamcommunity.com"},
		{Name: community.CookieLanguage, Value: "english", Path: "/", Domain: ".steamcommunity.com"},
	}); err != nil {
		return err
	}
	headers := map[string]string{"X-Requested-With": "com.valvesoftware.android.steam.community"}
	_, err := community.MobileRequest(c.client, http.MethodGet,
		c.baseURL+"/login?oauth_client_id="+community.OAuthClientID+"&oauth_scope=read_profile%20write_profile%20read_client%20write_client",
		nil, headers)
	if err != nil {
		return err
	}
	c.bootstrapped = true
	return nil
}

// Login runs one getrsakey + dologin round with the accumulated
// challenge answers attached.
func (c *Client) Login(username, password string, answers Answers) (*Outcome, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if err := c.bootstrap(); err != nil {
		return nil, err
	}

	body, err := community.MobileRequest(c.client, http.MethodPost, c.baseURL+community.PathRSAKey,
		url.Values{"username": {username}}, nil)
	if err != nil {
		return nil, err
	}
	var rsa rsaResponse
	if err := json.Unmarshal(body, &rsa); err != nil {
		return nil, fmt.Errorf("%w: %v", community.ErrMalformedResponse, err)
	}
	if !rsa.Success {
		return nil, ErrBadRSA
	}

	encrypted, err := community.EncryptPassword(rsa.Modulus, rsa.Exponent, password)
	if err != nil {
		return nil, err
	}

	postData := url.Values{}
	postData.Set("username", username)
	postData.Set("password", encrypted)
	postData.Set("twofactorcode", answers.TwoFactorCode)
	if answers.CaptchaGID != "" {
		postData.Set("captchagid", answers.CaptchaGID)
		postData.Set("captcha_text", answers.CaptchaText)
	}
	if answers.EmailSteamID != 0 {
		postData.Set("emailsteamid", strconv.FormatUint(answers.EmailSteamID, 10))
		postData.Set("emailauth", answers.EmailCode)
	}
	postData.Set("rsatimestamp", rsa.Timestamp)
	postData.Set("remember_login", "false")
	postData.Set("oauth_client_id", community.OAuthClientID)
	postData.Set("oauth_scope", community.OAuthScope)
	postData.Set("loginfriendlyname", "#login_emailauth_friendlyname_mobile")
	postData.Set("donotcache", strconv.FormatInt(time.Now().Unix(), 10))

	body, err = community.MobileRequest(c.client, http.MethodPost, c.baseURL+community.PathDoLogin, postData, nil)
	if err != nil {
		return nil, err
	}
	var r loginResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", community.ErrMalformedResponse, err)
	}

	return c.decode(&r)
}

func (c *Client) decode(r *loginResponse) (*Outcome, error) {
	switch {
	case r.CaptchaNeeded:
		return &Outcome{Status: StatusCaptchaNeeded, CaptchaGID: r.CaptchaGID.String(), Message: r.Message}, nil
	case r.EmailAuthNeeded:
		return &Outcome{Status: StatusEmailCodeNeeded, EmailSteamID: r.EmailSteamID, EmailDomain: r.EmailDomain}, nil
	case r.TwoFactorNeeded && !r.Success:
		return &Outcome{Status: StatusTwoFactorNeeded, Message: r.Message}, nil
	case !r.LoginComplete:
		msg := r.Message
		if msg == "" {
			msg = "incorrect username and/or password"
		}
		return &Outcome{Status: StatusBadCredentials, Message: msg}, nil
	}

	if r.OAuth == nil || r.OAuth.OAuthToken == "" {
		return nil, ErrNoOAuth
	}

	out := &Outcome{
		Status:     StatusOK,
		OAuthToken: r.OAuth.OAuthToken,
		SteamID:    r.OAuth.SteamID,
		WebCookie:  r.OAuth.WebCookie,
	}
	steamID := strconv.FormatUint(r.OAuth.SteamID, 10)
	out.SteamLogin = steamID + "%7C%7C" + r.OAuth.SteamLogin
	out.SteamLoginSecure = steamID + "%7C%7C" + r.OAuth.SteamLoginSecure
	return out, nil
}

// SessionID reads the sessionid cookie the server set during login,
// generating a fresh one if the jar has none.
func (c *Client) SessionID() (string, error) {
	base, err := url.Parse(community.CommunityBase)
	if err != nil {
		return "", err
	}
	for _, cookie := range c.client.Jar.Cookies(base) {
		if cookie.Name == community.CookieSessionID {
			return cookie.Value, nil
		}
	}
	if c.baseURL != community.CommunityBase {
		alt, err := url.Parse(c.baseURL)
		if err == nil {
			for _, cookie := range c.client.Jar.Cookies(alt) {
				if cookie.Name == community.CookieSessionID {
					return cookie.Value, nil
				}
			}
		}
	}
	return community.GenerateSessionID()
}

// CaptchaImage downloads the captcha image for a gid.
func (c *Client) CaptchaImage(gid string) ([]byte, error) {
	return community.WebRequest(c.client, http.MethodGet,
		c.baseURL+community.PathRenderCaptcha, url.Values{"gid": {gid}}, nil)
}
