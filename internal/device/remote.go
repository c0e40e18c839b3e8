package device

import (
	"context"
	"fmt"

	"github.com/nerrad567/homeguard-gateway/internal/backend"
)

// CameraRemote is the devices-manager side of the camera inventory.
type CameraRemote interface {
	List(ctx context.Context) ([]RTSPCamera, error)
	Create(ctx context.Context, camera RTSPCamera) (RTSPCamera, error)
	Update(ctx context.Context, camera RTSPCamera) (RTSPCamera, error)
	Delete(ctx context.Context, id int64) error
}

// ReedRemote is the devices-manager side of the reed inventory, plus
// the on-demand state probe.
type ReedRemote interface {
	List(ctx context.Context) ([]MagneticReed, error)
	Create(ctx context.Context, reed MagneticReed) (MagneticReed, error)
	Update(ctx context.Context, reed MagneticReed) (MagneticReed, error)
	Delete(ctx context.Context, id int64) error

	// State reads the current open/closed reading of one sensor.
	State(ctx context.Context, gpioPin int) (ReedState, error)
}

const (
	cameraPath = backend.DevicesService + "/rtsp-camera"
	reedPath   = backend.DevicesService + "/magnetic-reed"
)

// HTTPCameraRemote implements CameraRemote over the backend HTTP client.
type HTTPCameraRemote struct {
	client *backend.Client
}

// NewHTTPCameraRemote creates a camera remote over the given client.
func NewHTTPCameraRemote(client *backend.Client) *HTTPCameraRemote {
	return &HTTPCameraRemote{client: client}
}

func (r *HTTPCameraRemote) List(ctx context.Context) ([]RTSPCamera, error) {
	var cameras []RTSPCamera
	if err := r.client.GetJSON(ctx, cameraPath+"/", nil, &cameras); err != nil {
		return nil, err
	}
	return cameras, nil
}

func (r *HTTPCameraRemote) Create(ctx context.Context, camera RTSPCamera) (RTSPCamera, error) {
	var created RTSPCamera
	if err := r.client.PostJSON(ctx, cameraPath+"/", camera, &created); err != nil {
		return RTSPCamera{}, err
	}
	return created, nil
}

func (r *HTTPCameraRemote) Update(ctx context.Context, camera RTSPCamera) (RTSPCamera, error) {
	var updated RTSPCamera
	if err := r.client.PutJSON(ctx, fmt.Sprintf("%s/%d", cameraPath, camera.ID), camera, &updated); err != nil {
		return RTSPCamera{}, err
	}
	return updated, nil
}

func (r *HTTPCameraRemote) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, fmt.Sprintf("%s/%d", cameraPath, id))
}

// HTTPReedRemote implements ReedRemote over the backend HTTP client.
type HTTPReedRemote struct {
	client *backend.Client
}

// NewHTTPReedRemote creates a reed remote over the given client.
func NewHTTPReedRemote(client *backend.Client) *HTTPReedRemote {
	return &HTTPReedRemote{client: client}
}

func (r *HTTPReedRemote) List(ctx context.Context) ([]MagneticReed, error) {
	var reeds []MagneticReed
	if err := r.client.GetJSON(ctx, reedPath+"/", nil, &reeds); err != nil {
		return nil, err
	}
	return reeds, nil
}

func (r *HTTPReedRemote) Create(ctx context.Context, reed MagneticReed) (MagneticReed, error) {
	var created MagneticReed
	if err := r.client.PostJSON(ctx, reedPath+"/", reed, &created); err != nil {
		return MagneticReed{}, err
	}
	return created, nil
}

func (r *HTTPReedRemote) Update(ctx context.Context, reed MagneticReed) (MagneticReed, error) {
	var updated MagneticReed
	if err := r.client.PutJSON(ctx, fmt.Sprintf("%s/%d", reedPath, reed.ID), reed, &updated); err != nil {
		return MagneticReed{}, err
	}
	return updated, nil
}

func (r *HTTPReedRemote) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, fmt.Sprintf("%s/%d", reedPath, id))
}

func (r *HTTPReedRemote) State(ctx context.Context, gpioPin int) (ReedState, error) {
	var state ReedState
	if err := r.client.GetJSON(ctx, fmt.Sprintf("%s/%d/current-status", reedPath, gpioPin), nil, &state); err != nil {
		return ReedState{}, err
	}
	return state, nil
}
