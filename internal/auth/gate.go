package auth

import (
	"context"
	"fmt"
	"sync"
)

// Loader fetches the current session's permission names from the backend.
type Loader interface {
	Permissions(ctx context.Context) ([]string, error)
}

// Gate holds the permission set of the active session and answers
// authorisation checks locally. Checks never touch the network: the set
// is replaced wholesale by Load and cleared on logout.
//
// All methods are safe for concurrent use.
type Gate struct {
	loader Loader

	mu    sync.RWMutex
	perms map[Permission]struct{}
}

// NewGate creates a gate backed by the given loader.
func NewGate(loader Loader) *Gate {
	return &Gate{
		loader: loader,
		perms:  make(map[Permission]struct{}),
	}
}

// Load fetches the session's permissions and replaces the cached set.
// On failure the previous set is kept unchanged.
func (g *Gate) Load(ctx context.Context) error {
	names, err := g.loader.Permissions(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermissionLoad, err)
	}

	set := ParseSet(names)

	g.mu.Lock()
	g.perms = set
	g.mu.Unlock()

	return nil
}

// Has reports whether the active session holds the permission.
func (g *Gate) Has(perm Permission) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.perms[perm]
	return ok
}

// Require returns ErrPermissionDenied unless the active session holds
// the permission. Callers check Require before dispatching any backend
// request that the permission covers.
func (g *Gate) Require(perm Permission) error {
	if !g.Has(perm) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, perm)
	}
	return nil
}

// List returns the currently held permissions. The slice is a fresh copy.
func (g *Gate) List() []Permission {
	g.mu.RLock()
	defer g.mu.RUnlock()

	perms := make([]Permission, 0, len(g.perms))
	for p := range g.perms {
		perms = append(perms, p)
	}
	return perms
}

// Clear empties the permission set. Called on logout so a stale grant
// set cannot outlive its session.
func (g *Gate) Clear() {
	g.mu.Lock()
	g.perms = make(map[Permission]struct{})
	g.mu.Unlock()
}
