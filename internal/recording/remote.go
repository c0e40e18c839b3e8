package recording

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/homeguard-gateway/internal/backend"
)

// Remote is the devices-manager side of the recording archive.
type Remote interface {
	List(ctx context.Context) ([]Recording, error)
	Delete(ctx context.Context, id int64) error
	Storage(ctx context.Context) (StorageInfo, error)
}

// errImmutable guards the write paths the archive does not have.
var errImmutable = errors.New("recording: archive entries are immutable")

const recordingPath = backend.DevicesService + "/recording"

// HTTPRemote implements Remote over the backend HTTP client.
type HTTPRemote struct {
	client *backend.Client
}

// NewHTTPRemote creates a remote over the given client.
func NewHTTPRemote(client *backend.Client) *HTTPRemote {
	return &HTTPRemote{client: client}
}

// List implements Remote.
func (r *HTTPRemote) List(ctx context.Context) ([]Recording, error) {
	var recordings []Recording
	if err := r.client.GetJSON(ctx, recordingPath+"/", nil, &recordings); err != nil {
		return nil, err
	}
	return recordings, nil
}

// Delete implements Remote.
func (r *HTTPRemote) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, fmt.Sprintf("%s/%d", recordingPath, id))
}

// Storage implements Remote.
func (r *HTTPRemote) Storage(ctx context.Context) (StorageInfo, error) {
	var info StorageInfo
	if err := r.client.GetJSON(ctx, recordingPath+"/storage", nil, &info); err != nil {
		return StorageInfo{}, err
	}
	return info, nil
}
