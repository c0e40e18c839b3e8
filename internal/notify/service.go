package notify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/homeguard-gateway/internal/auth"
	"github.com/nerrad567/homeguard-gateway/internal/resource"
)

// Service owns both alerting configurations.
type Service struct {
	email *resource.Singleton[EmailConfig]
	audio *resource.Singleton[AudioConfig]
}

// NewService creates a notify service over the two configuration remotes.
func NewService(email resource.SingletonBackend[EmailConfig], audio resource.SingletonBackend[AudioConfig], gate resource.Gate) *Service {
	return &Service{
		email: resource.NewSingleton(resource.SingletonConfig[EmailConfig]{
			Name:       "email config",
			Backend:    email,
			Gate:       gate,
			MutatePerm: auth.PermChangeMailConfig,
		}),
		audio: resource.NewSingleton(resource.SingletonConfig[AudioConfig]{
			Name:       "alarm audio config",
			Backend:    audio,
			Gate:       gate,
			MutatePerm: auth.PermChangeAlarmSound,
		}),
	}
}

// Refresh reloads both configurations concurrently.
func (s *Service) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.email.Refresh(ctx) })
	g.Go(func() error { return s.audio.Refresh(ctx) })
	return g.Wait()
}

// Email returns the cached email configuration and whether one exists.
func (s *Service) Email() (EmailConfig, bool) {
	return s.email.Value()
}

// SaveEmail stores the email configuration, creating or updating as
// needed.
func (s *Service) SaveEmail(ctx context.Context, cfg EmailConfig) (EmailConfig, error) {
	return s.email.Save(ctx, cfg)
}

// RemoveEmail deletes the email configuration.
func (s *Service) RemoveEmail(ctx context.Context) error {
	return s.email.Remove(ctx)
}

// Audio returns the cached alarm sound configuration and whether one
// exists.
func (s *Service) Audio() (AudioConfig, bool) {
	return s.audio.Value()
}

// SaveAudio stores the alarm sound configuration, creating or updating
// as needed.
func (s *Service) SaveAudio(ctx context.Context, cfg AudioConfig) (AudioConfig, error) {
	return s.audio.Save(ctx, cfg)
}

// RemoveAudio deletes the alarm sound configuration.
func (s *Service) RemoveAudio(ctx context.Context) error {
	return s.audio.Remove(ctx)
}
