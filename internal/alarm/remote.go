package alarm

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nerrad567/homeguard-gateway/internal/backend"
)

// Remote is the devices-manager side of alarm groups. Satisfied by
// *HTTPRemote in production and by fakes in tests.
type Remote interface {
	List(ctx context.Context) ([]Group, error)
	Create(ctx context.Context, group Group) (Group, error)
	Update(ctx context.Context, group Group) (Group, error)
	Delete(ctx context.Context, id int64) error

	// StartListening arms the group. force skips the backend's
	// open-sensor check.
	StartListening(ctx context.Context, id int64, force bool) error

	// StopListening disarms the group.
	StopListening(ctx context.Context, id int64) error
}

// HTTPRemote implements Remote over the backend HTTP client.
type HTTPRemote struct {
	client *backend.Client
}

// NewHTTPRemote creates a remote over the given client.
func NewHTTPRemote(client *backend.Client) *HTTPRemote {
	return &HTTPRemote{client: client}
}

const groupPath = backend.DevicesService + "/device-group"

// List implements Remote.
func (r *HTTPRemote) List(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := r.client.GetJSON(ctx, groupPath+"/", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Create implements Remote.
func (r *HTTPRemote) Create(ctx context.Context, group Group) (Group, error) {
	var created Group
	if err := r.client.PostJSON(ctx, groupPath+"/", group, &created); err != nil {
		return Group{}, err
	}
	return created, nil
}

// Update implements Remote.
func (r *HTTPRemote) Update(ctx context.Context, group Group) (Group, error) {
	var updated Group
	if err := r.client.PutJSON(ctx, fmt.Sprintf("%s/%d", groupPath, group.ID), group, &updated); err != nil {
		return Group{}, err
	}
	return updated, nil
}

// Delete implements Remote.
func (r *HTTPRemote) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, fmt.Sprintf("%s/%d", groupPath, id))
}

// StartListening implements Remote.
func (r *HTTPRemote) StartListening(ctx context.Context, id int64, force bool) error {
	q := url.Values{}
	q.Set("force_listening", fmt.Sprintf("%t", force))
	return r.client.PostQuery(ctx, fmt.Sprintf("%s/%d/start-listening", groupPath, id), q, nil)
}

// StopListening implements Remote. The backend expects the
// force_listening flag on both directions; it is always false here.
func (r *HTTPRemote) StopListening(ctx context.Context, id int64) error {
	q := url.Values{}
	q.Set("force_listening", "false")
	return r.client.PostQuery(ctx, fmt.Sprintf("%s/%d/stop-listening", groupPath, id), q, nil)
}
