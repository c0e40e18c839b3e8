package notify

import (
	"context"

	"github.com/nerrad567/homeguard-gateway/internal/backend"
)

const (
	emailPath = backend.AuthService + "/email-config"
	audioPath = backend.DevicesService + "/alarm-audio-config"
)

// HTTPEmailRemote is the auth-service side of the email configuration.
type HTTPEmailRemote struct {
	client *backend.Client
}

// NewHTTPEmailRemote creates an email config remote.
func NewHTTPEmailRemote(client *backend.Client) *HTTPEmailRemote {
	return &HTTPEmailRemote{client: client}
}

func (r *HTTPEmailRemote) Get(ctx context.Context) (EmailConfig, error) {
	var cfg EmailConfig
	if err := r.client.GetJSON(ctx, emailPath+"/", nil, &cfg); err != nil {
		return EmailConfig{}, err
	}
	return cfg, nil
}

func (r *HTTPEmailRemote) Create(ctx context.Context, cfg EmailConfig) (EmailConfig, error) {
	var created EmailConfig
	if err := r.client.PostJSON(ctx, emailPath+"/", cfg, &created); err != nil {
		return EmailConfig{}, err
	}
	return created, nil
}

func (r *HTTPEmailRemote) Update(ctx context.Context, cfg EmailConfig) (EmailConfig, error) {
	var updated EmailConfig
	if err := r.client.PutJSON(ctx, emailPath+"/", cfg, &updated); err != nil {
		return EmailConfig{}, err
	}
	return updated, nil
}

func (r *HTTPEmailRemote) Delete(ctx context.Context) error {
	return r.client.Delete(ctx, emailPath+"/")
}

// HTTPAudioRemote is the devices-manager side of the alarm sound
// configuration.
type HTTPAudioRemote struct {
	client *backend.Client
}

// NewHTTPAudioRemote creates an audio config remote.
func NewHTTPAudioRemote(client *backend.Client) *HTTPAudioRemote {
	return &HTTPAudioRemote{client: client}
}

func (r *HTTPAudioRemote) Get(ctx context.Context) (AudioConfig, error) {
	var cfg AudioConfig
	if err := r.client.GetJSON(ctx, audioPath+"/", nil, &cfg); err != nil {
		return AudioConfig{}, err
	}
	return cfg, nil
}

func (r *HTTPAudioRemote) Create(ctx context.Context, cfg AudioConfig) (AudioConfig, error) {
	var created AudioConfig
	if err := r.client.PostJSON(ctx, audioPath+"/", cfg, &created); err != nil {
		return AudioConfig{}, err
	}
	return created, nil
}

func (r *HTTPAudioRemote) Update(ctx context.Context, cfg AudioConfig) (AudioConfig, error) {
	var updated AudioConfig
	if err := r.client.PutJSON(ctx, audioPath+"/", cfg, &updated); err != nil {
		return AudioConfig{}, err
	}
	return updated, nil
}

func (r *HTTPAudioRemote) Delete(ctx context.Context) error {
	return r.client.Delete(ctx, audioPath+"/")
}
