package device

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/homeguard-gateway/internal/auth"
	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/logging"
	"github.com/nerrad567/homeguard-gateway/internal/resource"
)

// Service owns both device inventories and the live reed state overlay.
type Service struct {
	reedRemote ReedRemote
	cameras    *resource.Store[RTSPCamera]
	reeds      *resource.Store[MagneticReed]
	logger     *logging.Logger

	mu        sync.RWMutex
	reedState map[int]bool
	onReed    []func(ReedState)
}

// NewService creates a device service over the two inventory remotes.
func NewService(cameraRemote CameraRemote, reedRemote ReedRemote, gate resource.Gate, logger *logging.Logger) *Service {
	perms := resource.Permissions{
		Create: auth.PermModifyDevices,
		Update: auth.PermModifyDevices,
		Delete: auth.PermModifyDevices,
	}

	return &Service{
		reedRemote: reedRemote,
		cameras: resource.NewStore(resource.Config[RTSPCamera]{
			Name:    "camera",
			Backend: cameraRemote,
			Gate:    gate,
			Perms:   perms,
			ID:      func(c RTSPCamera) int64 { return c.ID },
		}),
		reeds: resource.NewStore(resource.Config[MagneticReed]{
			Name:    "magnetic reed",
			Backend: reedRemote,
			Gate:    gate,
			Perms:   perms,
			ID:      func(r MagneticReed) int64 { return r.ID },
		}),
		logger:    logger,
		reedState: make(map[int]bool),
	}
}

// Refresh reloads both inventories concurrently. Either failure fails
// the whole refresh; the store that failed keeps its prior cache.
func (s *Service) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.cameras.Refresh(ctx) })
	g.Go(func() error { return s.reeds.Refresh(ctx) })
	return g.Wait()
}

// Inventory returns both cached collections.
func (s *Service) Inventory() Inventory {
	return Inventory{
		Cameras: s.cameras.Items(),
		Reeds:   s.reeds.Items(),
	}
}

// Cameras returns the cached camera inventory.
func (s *Service) Cameras() []RTSPCamera {
	return s.cameras.Items()
}

// CameraByIP returns the cached camera with the given address. Used to
// join recordings, which reference cameras by IP, to their metadata.
func (s *Service) CameraByIP(ip string) (RTSPCamera, bool) {
	for _, c := range s.cameras.Items() {
		if c.IP == ip {
			return c, true
		}
	}
	return RTSPCamera{}, false
}

// CreateCamera stores a new camera.
func (s *Service) CreateCamera(ctx context.Context, camera RTSPCamera) (RTSPCamera, error) {
	return s.cameras.Create(ctx, camera)
}

// UpdateCamera replaces an existing camera.
func (s *Service) UpdateCamera(ctx context.Context, camera RTSPCamera) (RTSPCamera, error) {
	return s.cameras.Update(ctx, camera)
}

// DeleteCamera removes a camera.
func (s *Service) DeleteCamera(ctx context.Context, id int64) error {
	return s.cameras.Delete(ctx, id)
}

// Reeds returns the cached reed inventory.
func (s *Service) Reeds() []MagneticReed {
	return s.reeds.Items()
}

// CreateReed stores a new reed sensor.
func (s *Service) CreateReed(ctx context.Context, reed MagneticReed) (MagneticReed, error) {
	return s.reeds.Create(ctx, reed)
}

// UpdateReed replaces an existing reed sensor.
func (s *Service) UpdateReed(ctx context.Context, reed MagneticReed) (MagneticReed, error) {
	return s.reeds.Update(ctx, reed)
}

// DeleteReed removes a reed sensor.
func (s *Service) DeleteReed(ctx context.Context, id int64) error {
	s.mu.RLock()
	reed, cached := s.reeds.Get(id)
	s.mu.RUnlock()

	if err := s.reeds.Delete(ctx, id); err != nil {
		return err
	}

	// Drop the overlay entry so a stale reading cannot outlive its sensor.
	if cached {
		s.mu.Lock()
		delete(s.reedState, reed.GPIOPin)
		s.mu.Unlock()
	}
	return nil
}

// ReedStatus reads the sensor's live state from the backend and records
// it in the overlay.
func (s *Service) ReedStatus(ctx context.Context, gpioPin int) (ReedState, error) {
	state, err := s.reedRemote.State(ctx, gpioPin)
	if err != nil {
		return ReedState{}, err
	}
	s.applyReedState(state, false)
	return state, nil
}

// ApplyReedState records a state reading that arrived over the event
// feed and notifies observers of changes.
func (s *Service) ApplyReedState(state ReedState) {
	s.applyReedState(state, true)
}

func (s *Service) applyReedState(state ReedState, notify bool) {
	s.mu.Lock()
	prev, known := s.reedState[state.GPIOPin]
	s.reedState[state.GPIOPin] = state.Open
	observers := make([]func(ReedState), len(s.onReed))
	copy(observers, s.onReed)
	s.mu.Unlock()

	if !notify || (known && prev == state.Open) {
		return
	}

	s.logger.Debug("reed state changed", "gpio_pin", state.GPIOPin, "open", state.Open)
	for _, fn := range observers {
		fn(state)
	}
}

// ReedStates returns a copy of the live state overlay, keyed by GPIO pin.
func (s *Service) ReedStates() map[int]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	states := make(map[int]bool, len(s.reedState))
	for pin, open := range s.reedState {
		states[pin] = open
	}
	return states
}

// OnReedChange registers an observer for live reed transitions.
func (s *Service) OnReedChange(fn func(ReedState)) {
	s.mu.Lock()
	s.onReed = append(s.onReed, fn)
	s.mu.Unlock()
}
