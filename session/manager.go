package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/PMArkive/PySteamAuth/community"
)

// Manager exchanges an OAuth token for fresh signed login cookies.
// It never persists anything: a successful refresh is written back to
// the secret store by the caller.
type Manager struct {
	client  *http.Client
	baseURL string
}

func NewManager() *Manager {
	return &Manager{
		client:  new(http.Client),
		baseURL: community.APIBase,
	}
}

// SetBaseURL overrides the API base, mainly for tests and proxies.
func (m *Manager) SetBaseURL(base string) {
	m.baseURL = base
}

func (m *Manager) SetProxy(proxy string) error {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return err
	}
	m.client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	return nil
}

// Refresh posts the session's OAuth token to the token-exchange
// endpoint and rewrites the SteamLogin/SteamLoginSecure cookie values
// in place. ErrConnectionFailed and ErrExpired distinguish a transient
// transport problem from a dead token.
func (m *Manager) Refresh(s *Session) error {
	params := url.Values{"access_token": {s.OAuthToken}}
	body, err := community.WebRequest(m.client, http.MethodPost, m.baseURL+community.PathGetWGToken, params, nil)
	if err != nil {
		if errors.Is(err, community.ErrConnection) {
			return ErrConnectionFailed
		}
		// Non-200 answers fold into the two-way taxonomy: an auth
		// rejection means the token is dead, anything else is server
		// trouble worth retrying later.
		var status *community.StatusError
		if errors.As(err, &status) {
			if status.Code == http.StatusUnauthorized || status.Code == http.StatusForbidden {
				return ErrExpired
			}
			return ErrConnectionFailed
		}
		return err
	}

	var r struct {
		Response struct {
			Token       string `json:"token"`
			TokenSecure string `json:"token_secure"`
		} `json:"response"`
	}
	// An expired or revoked token comes back as an empty or otherwise
	// malformed payload, not an error status.
	if err := json.Unmarshal(body, &r); err != nil || r.Response.Token == "" {
		return ErrExpired
	}

	steamID := strconv.FormatUint(s.SteamID, 10)
	s.SteamLogin = steamID + "%7C%7C" + r.Response.Token
	s.SteamLoginSecure = steamID + "%7C%7C" + r.Response.TokenSecure
	return nil
}
