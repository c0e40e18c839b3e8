package user

import (
	"context"
	"sync"

	"github.com/nerrad567/homeguard-gateway/internal/auth"
	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/logging"
	"github.com/nerrad567/homeguard-gateway/internal/resource"
)

// SessionEnder ends the active session. Satisfied by the session manager.
type SessionEnder interface {
	Logout()
}

// PermissionReloader refreshes the cached permission set. Satisfied by
// the auth gate.
type PermissionReloader interface {
	Load(ctx context.Context) error
}

// Service owns the account list and the identity of the session's own
// account.
type Service struct {
	remote   Remote
	store    *resource.Store[User]
	sessions SessionEnder
	perms    PermissionReloader
	logger   *logging.Logger

	mu      sync.RWMutex
	self    User
	selfSet bool
}

// NewService creates a user service.
func NewService(remote Remote, gate resource.Gate, sessions SessionEnder, perms PermissionReloader, logger *logging.Logger) *Service {
	return &Service{
		remote: remote,
		store: resource.NewStore(resource.Config[User]{
			Name:    "user",
			Backend: remote,
			Gate:    gate,
			Perms: resource.Permissions{
				List:   auth.PermUserManager,
				Create: auth.PermUserManager,
				Update: auth.PermUserManager,
				Delete: auth.PermUserManager,
			},
			ID: func(u User) int64 { return u.ID },
		}),
		sessions: sessions,
		perms:    perms,
		logger:   logger,
	}
}

// Refresh reloads the account list.
func (s *Service) Refresh(ctx context.Context) error {
	return s.store.Refresh(ctx)
}

// Users returns the cached account list.
func (s *Service) Users() []User {
	return s.store.Items()
}

// Current fetches the session's own account from the backend and
// remembers its identity for self-edit detection. Any session may call
// it; seeing your own account needs no permission.
func (s *Service) Current(ctx context.Context) (User, error) {
	u, err := s.remote.Current(ctx)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	s.self = u
	s.selfSet = true
	s.mu.Unlock()

	return u, nil
}

// Create stores a new account.
func (s *Service) Create(ctx context.Context, u User) (User, error) {
	return s.store.Create(ctx, u)
}

// Update replaces an account. Updating the session's own account
// reloads the permission set, because the grants may just have changed.
func (s *Service) Update(ctx context.Context, u User) (User, error) {
	updated, err := s.store.Update(ctx, u)
	if err != nil {
		return User{}, err
	}

	if s.isSelf(updated.ID) {
		s.mu.Lock()
		s.self = updated
		s.mu.Unlock()

		if err := s.perms.Load(ctx); err != nil {
			// The update itself succeeded; a stale permission set will
			// correct itself on the next backend rejection.
			s.logger.Warn("reloading permissions after self-update failed", "error", err)
		}
	}

	return updated, nil
}

// Delete removes an account. Deleting the session's own account ends
// the session; the backend would reject its token from now on anyway.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if s.isSelf(id) {
		s.logger.Info("own account deleted, ending session", "user_id", id)
		s.sessions.Logout()
	}
	return nil
}

func (s *Service) isSelf(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selfSet && s.self.ID == id
}
