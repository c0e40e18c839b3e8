package user

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/homeguard-gateway/internal/auth"
	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/logging"
)

type fakeRemote struct {
	users   []User
	current User
	err     error
}

func (f *fakeRemote) List(ctx context.Context) ([]User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

func (f *fakeRemote) Create(ctx context.Context, u User) (User, error) {
	if f.err != nil {
		return User{}, f.err
	}
	u.ID = int64(len(f.users) + 1)
	u.Password = ""
	return u, nil
}

func (f *fakeRemote) Update(ctx context.Context, u User) (User, error) {
	if f.err != nil {
		return User{}, f.err
	}
	u.Password = ""
	return u, nil
}

func (f *fakeRemote) Delete(ctx context.Context, id int64) error { return f.err }

func (f *fakeRemote) Current(ctx context.Context) (User, error) {
	if f.err != nil {
		return User{}, f.err
	}
	return f.current, nil
}

type fakeSessions struct {
	logouts int
}

func (f *fakeSessions) Logout() { f.logouts++ }

type fakeReloader struct {
	loads int
	err   error
}

func (f *fakeReloader) Load(ctx context.Context) error {
	f.loads++
	return f.err
}

type allowGate struct{}

func (allowGate) Require(auth.Permission) error { return nil }

type denyGate struct{}

func (denyGate) Require(perm auth.Permission) error { return auth.ErrPermissionDenied }

func newTestService(t *testing.T, remote *fakeRemote) (*Service, *fakeSessions, *fakeReloader) {
	t.Helper()

	sessions := &fakeSessions{}
	reloader := &fakeReloader{}
	s := NewService(remote, allowGate{}, sessions, reloader, logging.Default())
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	return s, sessions, reloader
}

func TestService_ManagementGated(t *testing.T) {
	s := NewService(&fakeRemote{}, denyGate{}, &fakeSessions{}, &fakeReloader{}, logging.Default())

	if err := s.Refresh(context.Background()); !errors.Is(err, auth.ErrPermissionDenied) {
		t.Errorf("Refresh() error = %v, want ErrPermissionDenied", err)
	}
	if _, err := s.Create(context.Background(), User{Username: "x"}); !errors.Is(err, auth.ErrPermissionDenied) {
		t.Errorf("Create() error = %v, want ErrPermissionDenied", err)
	}
}

func TestService_CurrentRemembersIdentity(t *testing.T) {
	remote := &fakeRemote{
		users:   []User{{ID: 1, Username: "admin"}},
		current: User{ID: 1, Username: "admin"},
	}
	s, _, reloader := newTestService(t, remote)

	me, err := s.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if me.ID != 1 {
		t.Errorf("Current().ID = %d", me.ID)
	}

	// Self-update must reload permissions.
	if _, err := s.Update(context.Background(), User{ID: 1, Username: "admin", Email: "new@home"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if reloader.loads != 1 {
		t.Errorf("permission reloads = %d, want 1 after self-update", reloader.loads)
	}
}

func TestService_UpdateOtherUserDoesNotReload(t *testing.T) {
	remote := &fakeRemote{
		users:   []User{{ID: 1, Username: "admin"}, {ID: 2, Username: "guest"}},
		current: User{ID: 1, Username: "admin"},
	}
	s, _, reloader := newTestService(t, remote)

	if _, err := s.Current(context.Background()); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if _, err := s.Update(context.Background(), User{ID: 2, Username: "guest"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if reloader.loads != 0 {
		t.Errorf("permission reloads = %d, want 0 for other-user update", reloader.loads)
	}
}

func TestService_SelfDeleteEndsSession(t *testing.T) {
	remote := &fakeRemote{
		users:   []User{{ID: 1, Username: "admin"}, {ID: 2, Username: "guest"}},
		current: User{ID: 1, Username: "admin"},
	}
	s, sessions, _ := newTestService(t, remote)

	if _, err := s.Current(context.Background()); err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	if err := s.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if sessions.logouts != 0 {
		t.Error("deleting another account ended the session")
	}

	if err := s.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if sessions.logouts != 1 {
		t.Error("deleting own account did not end the session")
	}
}

func TestService_UpdateFailurePreservesCache(t *testing.T) {
	remote := &fakeRemote{users: []User{{ID: 1, Username: "admin", Email: "old@home"}}}
	s, _, _ := newTestService(t, remote)

	remote.err = errors.New("boom")
	if _, err := s.Update(context.Background(), User{ID: 1, Username: "admin", Email: "new@home"}); err == nil {
		t.Fatal("Update() expected error")
	}

	users := s.Users()
	if len(users) != 1 || users[0].Email != "old@home" {
		t.Errorf("Users() = %v, want untouched cache", users)
	}
}
