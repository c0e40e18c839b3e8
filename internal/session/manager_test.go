package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/logging"
)

// fakeAuth returns a canned token and counts exchanges.
type fakeAuth struct {
	token string
	err   error
	calls int
}

func (f *fakeAuth) Token(ctx context.Context, username, password string) (string, error) {
	f.calls++
	return f.token, f.err
}

// fakeClock provides a controllable clock and timer scheduler so expiry
// can be tested without waiting.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Schedule(d time.Duration, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		t.stopped = true
	}
}

// Advance moves the clock forward and fires any due timers.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.at.After(c.now) {
			t.stopped = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

func (c *fakeClock) pendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func newTestManager(t *testing.T, auth Authenticator, store Store) (*Manager, *fakeClock) {
	t.Helper()

	clock := newFakeClock()
	m := NewManager(auth, store, logging.Default())
	m.now = clock.Now
	m.schedule = clock.Schedule
	return m, clock
}

func TestManager_LoginStandardSession(t *testing.T) {
	store := NewMemoryStore()
	m, clock := newTestManager(t, &fakeAuth{token: "tok-1"}, store)

	if err := m.Login(context.Background(), "alice", "pw", false); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	token, ok := m.Token()
	if !ok || token != "tok-1" {
		t.Errorf("Token() = %q, %v, want tok-1, true", token, ok)
	}

	state := m.Current()
	if !state.Active || state.Remembered {
		t.Errorf("Current() = %+v, want active non-remembered", state)
	}
	wantExpiry := clock.Now().Add(DefaultTTL)
	if !state.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", state.ExpiresAt, wantExpiry)
	}

	_, expiry, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if expiry != wantExpiry.UTC().Format(time.RFC3339) {
		t.Errorf("persisted expiry = %q, want %q", expiry, wantExpiry.UTC().Format(time.RFC3339))
	}
}

func TestManager_LoginRememberMe(t *testing.T) {
	store := NewMemoryStore()
	m, clock := newTestManager(t, &fakeAuth{token: "tok-1"}, store)

	if err := m.Login(context.Background(), "alice", "pw", true); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if clock.pendingTimers() != 0 {
		t.Error("remember-me login must not arm an expiry timer")
	}

	_, expiry, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if expiry != "never" {
		t.Errorf("persisted expiry = %q, want %q", expiry, "never")
	}

	// Far-future time passage must not end the session.
	clock.Advance(1000 * time.Hour)
	if _, ok := m.Token(); !ok {
		t.Error("remembered session ended without logout")
	}
}

func TestManager_LoginFailurePropagates(t *testing.T) {
	authErr := errors.New("backend: authentication failed")
	m, _ := newTestManager(t, &fakeAuth{err: authErr}, NewMemoryStore())

	if err := m.Login(context.Background(), "alice", "bad", false); !errors.Is(err, authErr) {
		t.Errorf("Login() error = %v, want wrapped auth error", err)
	}
	if _, ok := m.Token(); ok {
		t.Error("failed login must not leave a session")
	}
}

func TestManager_ExpiryForcesLogout(t *testing.T) {
	store := NewMemoryStore()
	m, clock := newTestManager(t, &fakeAuth{token: "tok-1"}, store)

	var gotReason string
	m.OnLogout(func(reason string) { gotReason = reason })

	if err := m.Login(context.Background(), "alice", "pw", false); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	clock.Advance(DefaultTTL - time.Second)
	if _, ok := m.Token(); !ok {
		t.Fatal("session ended before its expiry")
	}

	clock.Advance(2 * time.Second)
	if _, ok := m.Token(); ok {
		t.Error("session survived its expiry")
	}
	if gotReason != ReasonExpired {
		t.Errorf("logout reason = %q, want %q", gotReason, ReasonExpired)
	}

	token, _, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if token != "" {
		t.Error("expired session left persisted state behind")
	}
}

func TestManager_LogoutIdempotent(t *testing.T) {
	m, _ := newTestManager(t, &fakeAuth{token: "tok-1"}, NewMemoryStore())

	fired := 0
	m.OnLogout(func(string) { fired++ })

	if err := m.Login(context.Background(), "alice", "pw", false); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	m.Logout()
	m.Logout()
	m.Logout()

	if fired != 1 {
		t.Errorf("logout observers fired %d times, want 1", fired)
	}
}

func TestManager_HandleUnauthorized(t *testing.T) {
	m, _ := newTestManager(t, &fakeAuth{token: "tok-1"}, NewMemoryStore())

	var gotReason string
	m.OnLogout(func(reason string) { gotReason = reason })

	if err := m.Login(context.Background(), "alice", "pw", true); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	m.HandleUnauthorized()
	if _, ok := m.Token(); ok {
		t.Error("401 must end the session even when remembered")
	}
	if gotReason != ReasonUnauthorized {
		t.Errorf("logout reason = %q, want %q", gotReason, ReasonUnauthorized)
	}
}

func TestManager_ReloginCancelsOldTimer(t *testing.T) {
	m, clock := newTestManager(t, &fakeAuth{token: "tok-1"}, NewMemoryStore())

	if err := m.Login(context.Background(), "alice", "pw", false); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	clock.Advance(20 * time.Minute)
	if err := m.Login(context.Background(), "alice", "pw", false); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// The first timer's deadline passes; only the second must count.
	clock.Advance(15 * time.Minute)
	if _, ok := m.Token(); !ok {
		t.Error("re-login did not reset the expiry timer")
	}
	clock.Advance(20 * time.Minute)
	if _, ok := m.Token(); ok {
		t.Error("second session survived its expiry")
	}
}

func TestManager_RestoreValidSession(t *testing.T) {
	store := NewMemoryStore()
	clock := newFakeClock()
	future := clock.Now().Add(10 * time.Minute).UTC().Format(time.RFC3339)
	if err := store.Save("tok-old", future); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	m := NewManager(&fakeAuth{}, store, logging.Default())
	m.now = clock.Now
	m.schedule = clock.Schedule

	ok, err := m.Restore()
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !ok {
		t.Fatal("Restore() = false, want true")
	}

	token, active := m.Token()
	if !active || token != "tok-old" {
		t.Errorf("Token() = %q, %v after restore", token, active)
	}

	// The restored timer covers only the remaining lifetime.
	clock.Advance(11 * time.Minute)
	if _, active := m.Token(); active {
		t.Error("restored session survived its original expiry")
	}
}

func TestManager_RestoreRemembered(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Save("tok-old", "never"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	m, clock := newTestManager(t, &fakeAuth{}, store)

	ok, err := m.Restore()
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !ok {
		t.Fatal("Restore() = false, want true")
	}
	if clock.pendingTimers() != 0 {
		t.Error("restored remembered session must not arm a timer")
	}
	if state := m.Current(); !state.Remembered {
		t.Error("restored session should report remembered")
	}
}

func TestManager_RestoreStaleClears(t *testing.T) {
	store := NewMemoryStore()
	clock := newFakeClock()
	past := clock.Now().Add(-time.Minute).UTC().Format(time.RFC3339)
	if err := store.Save("tok-old", past); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	m := NewManager(&fakeAuth{}, store, logging.Default())
	m.now = clock.Now
	m.schedule = clock.Schedule

	ok, err := m.Restore()
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if ok {
		t.Fatal("Restore() = true for an expired session")
	}

	token, _, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if token != "" {
		t.Error("stale session state was not cleared")
	}
}

func TestManager_RestoreGarbageExpiryClears(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Save("tok-old", "not-a-timestamp"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	m, _ := newTestManager(t, &fakeAuth{}, store)

	ok, err := m.Restore()
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if ok {
		t.Fatal("Restore() = true for unparseable expiry")
	}
}

func TestManager_RestoreEmpty(t *testing.T) {
	m, _ := newTestManager(t, &fakeAuth{}, NewMemoryStore())

	ok, err := m.Restore()
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if ok {
		t.Error("Restore() = true with nothing persisted")
	}
}
