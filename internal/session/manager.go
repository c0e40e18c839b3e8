package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/logging"
)

// DefaultTTL is the local lifetime of a standard session.
const DefaultTTL = 30 * time.Minute

// neverExpires is the persisted expiry sentinel for remembered sessions.
const neverExpires = "never"

// Reasons a session ended, passed to logout observers.
const (
	ReasonUser         = "user"
	ReasonExpired      = "expired"
	ReasonUnauthorized = "unauthorized"
)

// Authenticator exchanges credentials for a bearer token.
// Satisfied by the backend client.
type Authenticator interface {
	Token(ctx context.Context, username, password string) (string, error)
}

// State is a snapshot of the current session.
type State struct {
	// Active reports whether a session exists.
	Active bool

	// Remembered reports whether the session has no local expiry.
	Remembered bool

	// ExpiresAt is the local expiry. Zero for remembered sessions.
	ExpiresAt time.Time
}

// Manager owns the session lifecycle: login, restore after restart,
// local expiry and logout. It is the single writer of session state;
// everything else observes it through Token, Current and OnLogout.
//
// All methods are safe for concurrent use.
type Manager struct {
	auth   Authenticator
	store  Store
	logger *logging.Logger

	// Injection points for tests. Production uses the real clock
	// and time.AfterFunc.
	now      func() time.Time
	schedule func(d time.Duration, fn func()) (cancel func())

	mu          sync.RWMutex
	token       string
	expiresAt   time.Time
	remembered  bool
	active      bool
	cancelTimer func()
	onLogout    []func(reason string)
}

// NewManager creates a session manager. The store may be a SQLiteStore
// in production or a MemoryStore in tests.
func NewManager(auth Authenticator, store Store, logger *logging.Logger) *Manager {
	return &Manager{
		auth:   auth,
		store:  store,
		logger: logger,
		now:    time.Now,
		schedule: func(d time.Duration, fn func()) func() {
			t := time.AfterFunc(d, fn)
			return func() { t.Stop() }
		},
	}
}

// Login exchanges credentials for a token and starts a session.
//
// A standard session expires locally after DefaultTTL. With rememberMe
// the session never expires locally and survives restarts indefinitely;
// only an explicit logout or a backend 401 ends it.
func (m *Manager) Login(ctx context.Context, username, password string, rememberMe bool) error {
	token, err := m.auth.Token(ctx, username, password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	var expiresAt time.Time
	persisted := neverExpires
	if !rememberMe {
		expiresAt = m.now().Add(DefaultTTL)
		persisted = expiresAt.UTC().Format(time.RFC3339)
	}

	m.checkTokenClaims(token, expiresAt, rememberMe)

	m.mu.Lock()
	if m.cancelTimer != nil {
		m.cancelTimer()
		m.cancelTimer = nil
	}
	m.token = token
	m.expiresAt = expiresAt
	m.remembered = rememberMe
	m.active = true
	if !rememberMe {
		m.cancelTimer = m.schedule(DefaultTTL, m.expire)
	}
	m.mu.Unlock()

	// Persistence is best effort. A failed write degrades restart
	// recovery, not the live session.
	if err := m.store.Save(token, persisted); err != nil {
		m.logger.Warn("persisting session failed", "error", err)
	}

	m.logger.Info("session started", "remember_me", rememberMe)
	return nil
}

// Restore recovers a persisted session after a restart. It returns true
// when a still-valid session was restored. Stale or unparseable state is
// cleared so restarts cannot resurrect an expired session.
func (m *Manager) Restore() (bool, error) {
	token, expiry, err := m.store.Load()
	if err != nil {
		return false, fmt.Errorf("restoring session: %w", err)
	}
	if token == "" {
		return false, nil
	}

	remembered := expiry == neverExpires
	var expiresAt time.Time
	if !remembered {
		expiresAt, err = time.Parse(time.RFC3339, expiry)
		if err != nil || !expiresAt.After(m.now()) {
			if clearErr := m.store.Clear(); clearErr != nil {
				m.logger.Warn("clearing stale session failed", "error", clearErr)
			}
			m.logger.Info("persisted session expired, cleared")
			return false, nil
		}
	}

	m.mu.Lock()
	m.token = token
	m.expiresAt = expiresAt
	m.remembered = remembered
	m.active = true
	if !remembered {
		m.cancelTimer = m.schedule(expiresAt.Sub(m.now()), m.expire)
	}
	m.mu.Unlock()

	m.logger.Info("session restored", "remember_me", remembered)
	return true, nil
}

// Logout ends the session on request. Calling it without an active
// session is a no-op.
func (m *Manager) Logout() {
	m.logout(ReasonUser)
}

// HandleUnauthorized forces logout after the backend rejected the token.
// Wire it to the backend client's unauthorized hook; the server's verdict
// overrides any local expiry state.
func (m *Manager) HandleUnauthorized() {
	m.logout(ReasonUnauthorized)
}

// expire is the timer callback for standard sessions.
func (m *Manager) expire() {
	m.logout(ReasonExpired)
}

func (m *Manager) logout(reason string) {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	if m.cancelTimer != nil {
		m.cancelTimer()
		m.cancelTimer = nil
	}
	m.token = ""
	m.expiresAt = time.Time{}
	m.remembered = false
	m.active = false
	observers := make([]func(string), len(m.onLogout))
	copy(observers, m.onLogout)
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Warn("clearing persisted session failed", "error", err)
	}

	m.logger.Info("session ended", "reason", reason)
	for _, fn := range observers {
		fn(reason)
	}
}

// Token returns the current bearer token. It satisfies the backend
// client's token source.
func (m *Manager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.active {
		return "", false
	}
	return m.token, true
}

// Current returns a snapshot of the session state.
func (m *Manager) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{
		Active:     m.active,
		Remembered: m.remembered,
		ExpiresAt:  m.expiresAt,
	}
}

// OnLogout registers an observer called whenever a session ends, with
// the reason it ended. Observers run outside the manager's lock.
func (m *Manager) OnLogout(fn func(reason string)) {
	m.mu.Lock()
	m.onLogout = append(m.onLogout, fn)
	m.mu.Unlock()
}

// checkTokenClaims compares the token's own exp claim, when present,
// against the local expiry. The token is not verified here; the claim is
// read only to flag divergence between server and local lifetimes.
func (m *Manager) checkTokenClaims(token string, localExpiry time.Time, remembered bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}

	if remembered {
		m.logger.Warn("remembered session token carries server-side expiry",
			"token_exp", exp.Time.UTC().Format(time.RFC3339),
		)
		return
	}
	if exp.Time.Before(localExpiry) {
		m.logger.Warn("token expires before local session",
			"token_exp", exp.Time.UTC().Format(time.RFC3339),
			"local_exp", localExpiry.UTC().Format(time.RFC3339),
		)
	}
}
