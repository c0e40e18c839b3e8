package alarm

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/homeguard-gateway/internal/auth"
	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/logging"
	"github.com/nerrad567/homeguard-gateway/internal/resource"
)

// Service owns the alarm group cache and the arm/disarm transitions.
//
// Group CRUD goes through the shared resource store, gated by the
// device modification permission. Arming and disarming have their own
// permissions checked here, because each direction is granted
// independently.
type Service struct {
	remote Remote
	store  *resource.Store[Group]
	gate   resource.Gate
	logger *logging.Logger

	mu       sync.Mutex
	onChange []func(Group)
}

// NewService creates an alarm service.
func NewService(remote Remote, gate resource.Gate, logger *logging.Logger) *Service {
	return &Service{
		remote: remote,
		store: resource.NewStore(resource.Config[Group]{
			Name:    "alarm group",
			Backend: remote,
			Gate:    gate,
			Perms: resource.Permissions{
				Create: auth.PermModifyDevices,
				Update: auth.PermModifyDevices,
				Delete: auth.PermModifyDevices,
			},
			ID: func(g Group) int64 { return g.ID },
		}),
		gate:   gate,
		logger: logger,
	}
}

// Refresh reloads the group list from the backend.
func (s *Service) Refresh(ctx context.Context) error {
	return s.store.Refresh(ctx)
}

// Groups returns the cached groups.
func (s *Service) Groups() []Group {
	return s.store.Items()
}

// Get returns the cached group with the given ID.
func (s *Service) Get(id int64) (Group, bool) {
	return s.store.Get(id)
}

// Create stores a new group.
func (s *Service) Create(ctx context.Context, group Group) (Group, error) {
	return s.store.Create(ctx, group)
}

// Update replaces an existing group.
func (s *Service) Update(ctx context.Context, group Group) (Group, error) {
	return s.store.Update(ctx, group)
}

// Delete removes a group.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// Activate arms the group. Arming an already-armed group is a local
// no-op. The cached active flag flips only after the backend confirmed.
func (s *Service) Activate(ctx context.Context, id int64) (Group, error) {
	return s.transition(ctx, id, true)
}

// Deactivate disarms the group. Disarming an already-disarmed group is
// a local no-op.
func (s *Service) Deactivate(ctx context.Context, id int64) (Group, error) {
	return s.transition(ctx, id, false)
}

func (s *Service) transition(ctx context.Context, id int64, arm bool) (Group, error) {
	perm := auth.PermStopAlarm
	verb := "disarming"
	if arm {
		perm = auth.PermStartAlarm
		verb = "arming"
	}

	if s.gate != nil {
		if err := s.gate.Require(perm); err != nil {
			return Group{}, err
		}
	}

	group, ok := s.store.Get(id)
	if !ok {
		return Group{}, fmt.Errorf("%s alarm group %d: %w", verb, id, resource.ErrNotFound)
	}
	if group.Active == arm {
		return group, nil
	}

	var err error
	if arm {
		err = s.remote.StartListening(ctx, id, false)
	} else {
		err = s.remote.StopListening(ctx, id)
	}
	if err != nil {
		return Group{}, fmt.Errorf("%s alarm group %d: %w", verb, id, err)
	}

	s.store.Apply(id, func(g *Group) { g.Active = arm })
	group, _ = s.store.Get(id)

	s.logger.Info("alarm group state changed", "group_id", id, "active", arm)
	s.notify(group)

	return group, nil
}

// ApplyObserved records a state transition the backend reported through
// another channel, such as the MQTT feed.
func (s *Service) ApplyObserved(id int64, active bool) {
	changed := s.store.Apply(id, func(g *Group) {
		if g.Active == active {
			return
		}
		g.Active = active
	})
	if !changed {
		return
	}
	if group, ok := s.store.Get(id); ok {
		s.notify(group)
	}
}

// OnChange registers an observer for group state transitions.
func (s *Service) OnChange(fn func(Group)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

func (s *Service) notify(group Group) {
	s.mu.Lock()
	observers := make([]func(Group), len(s.onChange))
	copy(observers, s.onChange)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(group)
	}
}
