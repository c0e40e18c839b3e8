package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/homeguard-gateway/internal/auth"
	"github.com/nerrad567/homeguard-gateway/internal/backend"
)

type mailConfig struct {
	Server string
}

// fakeSingletonBackend is a scripted SingletonBackend with call counters.
type fakeSingletonBackend struct {
	value   mailConfig
	exists  bool
	err     error
	created int
	updated int
	deleted int
	fetched int
}

func (f *fakeSingletonBackend) Get(ctx context.Context) (mailConfig, error) {
	f.fetched++
	if f.err != nil {
		return mailConfig{}, f.err
	}
	if !f.exists {
		return mailConfig{}, backend.ErrNotFound
	}
	return f.value, nil
}

func (f *fakeSingletonBackend) Create(ctx context.Context, v mailConfig) (mailConfig, error) {
	f.created++
	if f.err != nil {
		return mailConfig{}, f.err
	}
	f.value, f.exists = v, true
	return v, nil
}

func (f *fakeSingletonBackend) Update(ctx context.Context, v mailConfig) (mailConfig, error) {
	f.updated++
	if f.err != nil {
		return mailConfig{}, f.err
	}
	f.value = v
	return v, nil
}

func (f *fakeSingletonBackend) Delete(ctx context.Context) error {
	f.deleted++
	if f.err != nil {
		return f.err
	}
	f.exists = false
	return nil
}

func newTestSingleton(remote *fakeSingletonBackend, gate Gate) *Singleton[mailConfig] {
	return NewSingleton(SingletonConfig[mailConfig]{
		Name:       "mail config",
		Backend:    remote,
		Gate:       gate,
		MutatePerm: auth.PermChangeMailConfig,
	})
}

func TestSingleton_RefreshAbsentIsNotAnError(t *testing.T) {
	remote := &fakeSingletonBackend{}
	s := newTestSingleton(remote, allowAllGate{})

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if _, present := s.Value(); present {
		t.Error("Value() reports present for absent object")
	}
	if !s.Loaded() {
		t.Error("Loaded() = false after successful refresh")
	}
}

func TestSingleton_SavePicksCreateThenUpdate(t *testing.T) {
	remote := &fakeSingletonBackend{}
	s := newTestSingleton(remote, allowAllGate{})

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	// First save: nothing exists, must create.
	if _, err := s.Save(context.Background(), mailConfig{Server: "smtp.home"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if remote.created != 1 || remote.updated != 0 {
		t.Errorf("first save: created=%d updated=%d, want 1/0", remote.created, remote.updated)
	}

	// Second save: object now present, must update.
	if _, err := s.Save(context.Background(), mailConfig{Server: "smtp2.home"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if remote.created != 1 || remote.updated != 1 {
		t.Errorf("second save: created=%d updated=%d, want 1/1", remote.created, remote.updated)
	}

	value, present := s.Value()
	if !present || value.Server != "smtp2.home" {
		t.Errorf("Value() = %+v, %v", value, present)
	}
}

func TestSingleton_SaveFailureKeepsCache(t *testing.T) {
	remote := &fakeSingletonBackend{value: mailConfig{Server: "smtp.home"}, exists: true}
	s := newTestSingleton(remote, allowAllGate{})

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	remote.err = errors.New("boom")
	if _, err := s.Save(context.Background(), mailConfig{Server: "bad"}); err == nil {
		t.Fatal("Save() expected error")
	}

	value, present := s.Value()
	if !present || value.Server != "smtp.home" {
		t.Errorf("Value() = %+v, want prior cache intact", value)
	}
}

func TestSingleton_RemoveAbsentFailsLocally(t *testing.T) {
	remote := &fakeSingletonBackend{}
	s := newTestSingleton(remote, allowAllGate{})

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if err := s.Remove(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove() error = %v, want ErrNotFound", err)
	}
	if remote.deleted != 0 {
		t.Error("absent removal must not reach the backend")
	}
}

func TestSingleton_Remove(t *testing.T) {
	remote := &fakeSingletonBackend{value: mailConfig{Server: "smtp.home"}, exists: true}
	s := newTestSingleton(remote, allowAllGate{})

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if err := s.Remove(context.Background()); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, present := s.Value(); present {
		t.Error("Value() reports present after removal")
	}

	// Next save must create again.
	if _, err := s.Save(context.Background(), mailConfig{Server: "smtp.home"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if remote.created != 1 {
		t.Errorf("created = %d, want 1 after removal", remote.created)
	}
}

func TestSingleton_DeniedMutationsNeverDispatch(t *testing.T) {
	remote := &fakeSingletonBackend{exists: true}
	s := newTestSingleton(remote, denyAllGate{})

	if _, err := s.Save(context.Background(), mailConfig{}); !errors.Is(err, auth.ErrPermissionDenied) {
		t.Errorf("Save() error = %v, want ErrPermissionDenied", err)
	}
	if err := s.Remove(context.Background()); !errors.Is(err, auth.ErrPermissionDenied) {
		t.Errorf("Remove() error = %v, want ErrPermissionDenied", err)
	}
	if remote.created+remote.updated+remote.deleted != 0 {
		t.Error("denied mutations must not reach the backend")
	}
}
