// Package session holds the short-lived web session derived from an
// account's long-lived OAuth token, and the manager that refreshes it.
package session

import (
	"net/http"
	"strconv"

	"github.com/PMArkive/PySteamAuth/community"
)

// Session is the material needed to act as a logged-in mobile client.
// It is only valid paired with the steam id it was issued for, and it
// expires silently: the server starts answering with empty payloads.
type Session struct {
	SteamID          uint64 `json:"SteamID"`
	OAuthToken       string `json:"OAuthToken"`
	SessionID        string `json:"SessionID"`
	SteamLogin       string `json:"SteamLogin"`
	SteamLoginSecure string `json:"SteamLoginSecure"`
	WebCookie        string `json:"WebCookie,omitempty"`
}

// Cookies returns the exact cookie set the mobile endpoints expect.
func (s *Session) Cookies() []*http.Cookie {
	const domain = ".steamcommunity.com"
	return []*http.Cookie{
		{Name: community.CookieMobileClientVersion, Value: community.ClientVersion, Path: "/", Domain: domain},
		{Name: community.CookieMobileClient, Value: "android", Path: "/", Domain: domain},
		{Name: community.CookieSteamID, Value: strconv.FormatUint(s.SteamID, 10), Path: "/", Domain: domain},
		{Name: community.CookieSteamLogin, Value: s.SteamLogin, Path: "/", Domain: domain, HttpOnly: true},
		{Name: community.CookieSteamLoginSecure, Value: s.SteamLoginSecure, Path: "/", Domain: domain, Secure: true, HttpOnly: true},
		{Name: community.CookieLanguage, Value: "english", Path: "/", Domain: domain},
		{Name: "dob", Value: "", Path: "/", Domain: domain},
		{Name: community.CookieSessionID, Value: s.SessionID, Path: "/", Domain: domain},
	}
}
