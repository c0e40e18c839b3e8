package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/homeguard-gateway/internal/auth"
)

// Backend is the remote side of a cached collection. Implementations are
// thin adapters over the backend HTTP client.
type Backend[T any] interface {
	// List fetches the full collection.
	List(ctx context.Context) ([]T, error)

	// Create stores a new entity and returns the backend's version of
	// it, ID assigned.
	Create(ctx context.Context, item T) (T, error)

	// Update replaces an existing entity and returns the backend's
	// version of it.
	Update(ctx context.Context, item T) (T, error)

	// Delete removes the entity with the given ID.
	Delete(ctx context.Context, id int64) error
}

// Gate answers permission checks. Satisfied by *auth.Gate.
type Gate interface {
	Require(perm auth.Permission) error
}

// Permissions names the permission guarding each operation. A zero-value
// entry leaves that operation ungated.
type Permissions struct {
	List   auth.Permission
	Create auth.Permission
	Update auth.Permission
	Delete auth.Permission
}

// Config wires a Store to its backend, gate and entity identity.
type Config[T any] struct {
	// Name identifies the collection in error messages.
	Name string

	// Backend performs the remote operations.
	Backend Backend[T]

	// Gate checks permissions. Nil disables gating entirely.
	Gate Gate

	// Perms names the permission for each operation.
	Perms Permissions

	// ID extracts an entity's backend-assigned identity.
	ID func(T) int64

	// Transform post-processes a fetched list before it is cached.
	// Optional; used for filtering and ordering.
	Transform func([]T) []T
}

// Store is a permission-gated, confirm-then-apply cache of a
// backend-owned collection.
//
// All methods are safe for concurrent use.
type Store[T any] struct {
	cfg Config[T]

	mu     sync.RWMutex
	items  []T
	loaded bool
}

// NewStore creates a store for the given configuration.
func NewStore[T any](cfg Config[T]) *Store[T] {
	return &Store[T]{cfg: cfg}
}

// Refresh fetches the collection and replaces the cache wholesale.
// On failure the prior cache is kept unchanged.
func (s *Store[T]) Refresh(ctx context.Context) error {
	if err := s.require(s.cfg.Perms.List); err != nil {
		return err
	}

	items, err := s.cfg.Backend.List(ctx)
	if err != nil {
		return fmt.Errorf("refreshing %s: %w", s.cfg.Name, err)
	}
	if s.cfg.Transform != nil {
		items = s.cfg.Transform(items)
	}

	s.mu.Lock()
	s.items = items
	s.loaded = true
	s.mu.Unlock()

	return nil
}

// Create sends the entity to the backend and appends the backend's
// version, with its assigned ID, to the cache.
func (s *Store[T]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	if err := s.require(s.cfg.Perms.Create); err != nil {
		return zero, err
	}

	created, err := s.cfg.Backend.Create(ctx, item)
	if err != nil {
		return zero, fmt.Errorf("creating %s: %w", s.cfg.Name, err)
	}

	s.mu.Lock()
	s.items = append(s.items, created)
	s.mu.Unlock()

	return created, nil
}

// Update replaces an existing entity. The entity must carry a non-zero
// ID that is present in the cache; both checks happen before any
// backend request.
func (s *Store[T]) Update(ctx context.Context, item T) (T, error) {
	var zero T
	if err := s.require(s.cfg.Perms.Update); err != nil {
		return zero, err
	}

	id := s.cfg.ID(item)
	if id == 0 {
		return zero, fmt.Errorf("updating %s: %w", s.cfg.Name, ErrInvalidID)
	}
	if _, ok := s.Get(id); !ok {
		return zero, fmt.Errorf("updating %s %d: %w", s.cfg.Name, id, ErrNotFound)
	}

	updated, err := s.cfg.Backend.Update(ctx, item)
	if err != nil {
		return zero, fmt.Errorf("updating %s %d: %w", s.cfg.Name, id, err)
	}

	s.mu.Lock()
	for i := range s.items {
		if s.cfg.ID(s.items[i]) == id {
			s.items[i] = updated
			break
		}
	}
	s.mu.Unlock()

	return updated, nil
}

// Delete removes the entity with the given ID. The cache entry is
// removed only after the backend confirmed the deletion.
func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	if err := s.require(s.cfg.Perms.Delete); err != nil {
		return err
	}
	if id == 0 {
		return fmt.Errorf("deleting %s: %w", s.cfg.Name, ErrInvalidID)
	}

	if err := s.cfg.Backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting %s %d: %w", s.cfg.Name, id, err)
	}

	s.mu.Lock()
	for i := range s.items {
		if s.cfg.ID(s.items[i]) == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	return nil
}

// Apply mutates the cached entity with the given ID in place. It is the
// hook for locally observed state changes that the backend has already
// confirmed through another channel. Returns false when the ID is not
// cached.
func (s *Store[T]) Apply(id int64, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.cfg.ID(s.items[i]) == id {
			fn(&s.items[i])
			return true
		}
	}
	return false
}

// Items returns a copy of the cached collection.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]T, len(s.items))
	copy(items, s.items)
	return items
}

// Get returns the cached entity with the given ID.
func (s *Store[T]) Get(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.items {
		if s.cfg.ID(s.items[i]) == id {
			return s.items[i], true
		}
	}
	var zero T
	return zero, false
}

// Loaded reports whether at least one refresh has succeeded.
func (s *Store[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store[T]) require(perm auth.Permission) error {
	if perm == "" || s.cfg.Gate == nil {
		return nil
	}
	return s.cfg.Gate.Require(perm)
}
