package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/homeguard-gateway/internal/auth"
	"github.com/nerrad567/homeguard-gateway/internal/backend"
)

// SingletonBackend is the remote side of a zero-or-one configuration
// object. Get returns the backend's not-found error when the object has
// never been created.
type SingletonBackend[T any] interface {
	Get(ctx context.Context) (T, error)
	Create(ctx context.Context, value T) (T, error)
	Update(ctx context.Context, value T) (T, error)
	Delete(ctx context.Context) error
}

// SingletonConfig wires a Singleton to its backend and gate.
type SingletonConfig[T any] struct {
	// Name identifies the object in error messages.
	Name string

	// Backend performs the remote operations.
	Backend SingletonBackend[T]

	// Gate checks permissions. Nil disables gating.
	Gate Gate

	// GetPerm guards Refresh; MutatePerm guards Save and Remove.
	// Zero values leave the operation ungated.
	GetPerm    auth.Permission
	MutatePerm auth.Permission
}

// Singleton caches a backend configuration object that exists zero or
// one times. Save picks create or update from local presence, so
// callers never choose the wrong verb.
//
// All methods are safe for concurrent use.
type Singleton[T any] struct {
	cfg SingletonConfig[T]

	mu      sync.RWMutex
	value   T
	present bool
	loaded  bool
}

// NewSingleton creates a singleton cache for the given configuration.
func NewSingleton[T any](cfg SingletonConfig[T]) *Singleton[T] {
	return &Singleton[T]{cfg: cfg}
}

// Refresh fetches the object. An absent object is not an error; it
// records that nothing exists yet, which steers the next Save to create.
func (s *Singleton[T]) Refresh(ctx context.Context) error {
	if err := s.require(s.cfg.GetPerm); err != nil {
		return err
	}

	value, err := s.cfg.Backend.Get(ctx)
	if errors.Is(err, backend.ErrNotFound) {
		s.mu.Lock()
		var zero T
		s.value, s.present, s.loaded = zero, false, true
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("refreshing %s: %w", s.cfg.Name, err)
	}

	s.mu.Lock()
	s.value, s.present, s.loaded = value, true, true
	s.mu.Unlock()

	return nil
}

// Save stores the object, creating it when none exists and updating it
// otherwise. The cache takes the backend's returned version.
func (s *Singleton[T]) Save(ctx context.Context, value T) (T, error) {
	var zero T
	if err := s.require(s.cfg.MutatePerm); err != nil {
		return zero, err
	}

	s.mu.RLock()
	present := s.present
	s.mu.RUnlock()

	var (
		saved T
		err   error
	)
	if present {
		saved, err = s.cfg.Backend.Update(ctx, value)
	} else {
		saved, err = s.cfg.Backend.Create(ctx, value)
	}
	if err != nil {
		return zero, fmt.Errorf("saving %s: %w", s.cfg.Name, err)
	}

	s.mu.Lock()
	s.value, s.present = saved, true
	s.mu.Unlock()

	return saved, nil
}

// Remove deletes the object. Removing an absent object fails locally
// with ErrNotFound before any backend request.
func (s *Singleton[T]) Remove(ctx context.Context) error {
	if err := s.require(s.cfg.MutatePerm); err != nil {
		return err
	}

	s.mu.RLock()
	present := s.present
	s.mu.RUnlock()
	if !present {
		return fmt.Errorf("removing %s: %w", s.cfg.Name, ErrNotFound)
	}

	if err := s.cfg.Backend.Delete(ctx); err != nil {
		return fmt.Errorf("removing %s: %w", s.cfg.Name, err)
	}

	s.mu.Lock()
	var zero T
	s.value, s.present = zero, false
	s.mu.Unlock()

	return nil
}

// Value returns the cached object and whether one exists.
func (s *Singleton[T]) Value() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.present
}

// Loaded reports whether at least one refresh has succeeded.
func (s *Singleton[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Singleton[T]) require(perm auth.Permission) error {
	if perm == "" || s.cfg.Gate == nil {
		return nil
	}
	return s.cfg.Gate.Require(perm)
}
