// Package account coordinates session upkeep for stored accounts:
// refresh, expiry-triggered re-login, and write-through of fresh
// tokens to the secret store.
package account

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/PMArkive/PySteamAuth/guard"
	"github.com/PMArkive/PySteamAuth/login"
	"github.com/PMArkive/PySteamAuth/mafile"
	"github.com/PMArkive/PySteamAuth/session"
	"github.com/PMArkive/PySteamAuth/ui"
)

// Handler owns the session lifecycle for every stored account. All
// operations on one account serialize through a per-account lock, so a
// scheduler tick and an interactive command never race a re-login.
type Handler struct {
	store    *mafile.Store
	sessions *session.Manager
	prompter ui.Prompter
	aligner  *guard.TimeAligner
	newConn  func() login.Conn
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func NewHandler(store *mafile.Store, sessions *session.Manager, prompter ui.Prompter, aligner *guard.TimeAligner) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		prompter: prompter,
		aligner:  aligner,
		newConn:  func() login.Conn { return login.NewClient() },
		logger:   zap.NewNop(),
		locks:    make(map[uint64]*sync.Mutex),
	}
}

func (h *Handler) SetLogger(logger *zap.Logger) {
	h.logger = logger
}

// SetConnFactory replaces the login connection constructor, for tests
// and proxies.
func (h *Handler) SetConnFactory(factory func() login.Conn) {
	h.newConn = factory
}

// Login runs the interactive login flow for an account not yet in the
// store, returning the fresh session.
func (h *Handler) Login(username string) (*session.Session, error) {
	engine := login.NewEngine(h.newConn(), h.prompter)
	if username != "" {
		engine.BindAccount(username, nil)
	}
	return engine.Run()
}

// EnsureSession makes the bundle's session usable, re-logging in at
// most once when the OAuth token has died. Transient connection
// failures keep the stale session; the confirmation endpoints tolerate
// it briefly and the next call tries again.
func (h *Handler) EnsureSession(b *mafile.SecretBundle) error {
	unlock := h.lock(b.SteamID())
	defer unlock()

	err := h.sessions.Refresh(b.Session)
	switch {
	case err == nil:
		return h.persist(b)

	case errors.Is(err, session.ErrConnectionFailed):
		h.logger.Warn("session refresh unreachable, keeping stale session",
			zap.Uint64("steamid", b.SteamID()))
		return nil

	case errors.Is(err, session.ErrExpired):
		h.prompter.Notify("Steam session expired. You will be prompted to sign back in.", ui.Info)
		if err := h.relogin(b); err != nil {
			return err
		}
		if err := h.sessions.Refresh(b.Session); err != nil {
			return fmt.Errorf("session refresh after re-login: %w", err)
		}
		return h.persist(b)

	default:
		return err
	}
}

// RefreshQuiet refreshes the session without any interactive repair,
// for background callers that must never prompt. A dead token comes
// back as session.ErrExpired; the caller decides whether stale is
// tolerable, and re-login waits for the next interactive operation.
func (h *Handler) RefreshQuiet(b *mafile.SecretBundle) error {
	unlock := h.lock(b.SteamID())
	defer unlock()

	if err := h.sessions.Refresh(b.Session); err != nil {
		return err
	}
	return h.persist(b)
}

// relogin runs the engine bound to the bundle's account so its own
// authenticator answers the two-factor challenge, then rewrites the
// session in place so everything holding the pointer sees the new
// tokens.
func (h *Handler) relogin(b *mafile.SecretBundle) error {
	engine := login.NewEngine(h.newConn(), h.prompter)
	engine.BindAccount(b.AccountName, func() (string, error) {
		return guard.Code(b.SharedSecret, h.aligner.Time())
	})
	fresh, err := engine.Run()
	if err != nil {
		return err
	}
	*b.Session = *fresh
	return nil
}

func (h *Handler) persist(b *mafile.SecretBundle) error {
	if err := h.store.Save(b); err != nil {
		return fmt.Errorf("write refreshed session: %w", err)
	}
	return nil
}

// lock returns the account's mutex locked, creating it on first use.
func (h *Handler) lock(steamID uint64) func() {
	h.mu.Lock()
	l, ok := h.locks[steamID]
	if !ok {
		l = new(sync.Mutex)
		h.locks[steamID] = l
	}
	h.mu.Unlock()

	l.Lock()
	return l.Unlock
}
