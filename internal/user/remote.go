package user

import (
	"context"
	"fmt"

	"github.com/nerrad567/homeguard-gateway/internal/backend"
)

// Remote is the auth-service side of account management.
type Remote interface {
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id int64) error

	// Current returns the account the session belongs to.
	Current(ctx context.Context) (User, error)
}

const usersPath = backend.AuthService + "/users"

// HTTPRemote implements Remote over the backend HTTP client.
type HTTPRemote struct {
	client *backend.Client
}

// NewHTTPRemote creates a remote over the given client.
func NewHTTPRemote(client *backend.Client) *HTTPRemote {
	return &HTTPRemote{client: client}
}

// List implements Remote.
func (r *HTTPRemote) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := r.client.GetJSON(ctx, usersPath+"/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create implements Remote.
func (r *HTTPRemote) Create(ctx context.Context, u User) (User, error) {
	var created User
	if err := r.client.PostJSON(ctx, usersPath+"/", u, &created); err != nil {
		return User{}, err
	}
	return created, nil
}

// Update implements Remote.
func (r *HTTPRemote) Update(ctx context.Context, u User) (User, error) {
	var updated User
	if err := r.client.PutJSON(ctx, fmt.Sprintf("%s/%d", usersPath, u.ID), u, &updated); err != nil {
		return User{}, err
	}
	return updated, nil
}

// Delete implements Remote.
func (r *HTTPRemote) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, fmt.Sprintf("%s/%d", usersPath, id))
}

// Current implements Remote.
func (r *HTTPRemote) Current(ctx context.Context) (User, error) {
	var u User
	if err := r.client.GetJSON(ctx, backend.AuthService+"/auth/user", nil, &u); err != nil {
		return User{}, err
	}
	return u, nil
}
