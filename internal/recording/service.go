package recording

import (
	"context"
	"sort"

	"github.com/nerrad567/homeguard-gateway/internal/auth"
	"github.com/nerrad567/homeguard-gateway/internal/device"
	"github.com/nerrad567/homeguard-gateway/internal/resource"
)

// CameraDirectory resolves camera metadata by address. Satisfied by the
// device service.
type CameraDirectory interface {
	CameraByIP(ip string) (device.RTSPCamera, bool)
}

// storeBackend adapts the archive Remote to the shared store contract.
// The archive has no write path for entries, so create and update
// always refuse.
type storeBackend struct {
	remote Remote
}

func (b storeBackend) List(ctx context.Context) ([]Recording, error) {
	return b.remote.List(ctx)
}

func (b storeBackend) Create(ctx context.Context, rec Recording) (Recording, error) {
	return Recording{}, errImmutable
}

func (b storeBackend) Update(ctx context.Context, rec Recording) (Recording, error) {
	return Recording{}, errImmutable
}

func (b storeBackend) Delete(ctx context.Context, id int64) error {
	return b.remote.Delete(ctx, id)
}

// Service owns the cached recording list and the storage probe. Every
// operation is gated by the recording access permission.
type Service struct {
	remote  Remote
	cameras CameraDirectory
	gate    resource.Gate
	store   *resource.Store[Recording]
}

// NewService creates a recording service.
func NewService(remote Remote, cameras CameraDirectory, gate resource.Gate) *Service {
	return &Service{
		remote:  remote,
		cameras: cameras,
		gate:    gate,
		store: resource.NewStore(resource.Config[Recording]{
			Name:    "recording",
			Backend: storeBackend{remote: remote},
			Gate:    gate,
			Perms: resource.Permissions{
				List:   auth.PermAccessRecordings,
				Delete: auth.PermAccessRecordings,
			},
			ID:        func(r Recording) int64 { return r.ID },
			Transform: completedByFilename,
		}),
	}
}

// completedByFilename drops in-progress recordings and orders the rest
// by filename ascending.
func completedByFilename(recordings []Recording) []Recording {
	kept := recordings[:0]
	for _, r := range recordings {
		if r.IsCompleted {
			kept = append(kept, r)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Filename < kept[j].Filename })
	return kept
}

// Refresh reloads the archive listing.
func (s *Service) Refresh(ctx context.Context) error {
	return s.store.Refresh(ctx)
}

// Recordings returns the cached, filtered, ordered listing.
func (s *Service) Recordings() []Recording {
	return s.store.Items()
}

// RecordingsWithCameras returns the cached listing joined with camera
// names from the device inventory.
func (s *Service) RecordingsWithCameras() []WithCamera {
	recordings := s.store.Items()
	joined := make([]WithCamera, 0, len(recordings))
	for _, r := range recordings {
		entry := WithCamera{Recording: r}
		if camera, ok := s.cameras.CameraByIP(r.CameraIP); ok {
			entry.CameraName = camera.Name
		}
		joined = append(joined, entry)
	}
	return joined
}

// Delete removes a recording from the archive.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// Storage reads the recorder's current disk usage. Gated like the rest
// of the archive, and never cached.
func (s *Service) Storage(ctx context.Context) (StorageInfo, error) {
	if s.gate != nil {
		if err := s.gate.Require(auth.PermAccessRecordings); err != nil {
			return StorageInfo{}, err
		}
	}
	return s.remote.Storage(ctx)
}
