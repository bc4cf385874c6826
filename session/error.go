package session

import "errors"

var (
	// ErrConnectionFailed means the refresh never reached the server.
	// Non-fatal; the caller may retry later.
	ErrConnectionFailed = errors.New("failed to refresh session: connection error")

	// ErrExpired means the server answered but the payload carried no
	// token: the OAuth token is expired or revoked. Recoverable exactly
	// once, by a full re-login followed by one retry.
	ErrExpired = errors.New("session expired")
)
