package backend

import (
	"context"
	"fmt"
	"net/url"
)

// tokenPath is the credential exchange endpoint. A 401 here means bad
// credentials, not an expired session, so classify treats it specially.
const tokenPath = AuthService + "/auth/token"

// tokenResponse is the token endpoint's success payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// initializedResponse is the first-run probe payload.
type initializedResponse struct {
	Initialized bool `json:"initialized"`
}

// FirstUser is the payload for registering the initial administrator
// account on a fresh installation.
type FirstUser struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Permissions []string `json:"permissions"`
}

// Token exchanges credentials for a bearer token.
//
// The endpoint expects a form-encoded body, not JSON. A missing or empty
// access_token in an otherwise successful response is treated as an
// authentication failure.
func (c *Client) Token(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp tokenResponse
	if err := c.PostForm(ctx, tokenPath, form, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: token response missing access_token", ErrAuthentication)
	}
	return resp.AccessToken, nil
}

// Permissions fetches the permission names granted to the current session.
func (c *Client) Permissions(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.GetJSON(ctx, AuthService+"/auth/permissions", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// IsInitialized reports whether the backend already has at least one
// registered user.
func (c *Client) IsInitialized(ctx context.Context) (bool, error) {
	var resp initializedResponse
	if err := c.GetJSON(ctx, AuthService+"/info/is-initialized", nil, &resp); err != nil {
		return false, err
	}
	return resp.Initialized, nil
}

// RegisterFirstUser creates the initial administrator account. Only valid
// while the backend reports uninitialized.
func (c *Client) RegisterFirstUser(ctx context.Context, user FirstUser) error {
	return c.PostJSON(ctx, AuthService+"/users/first", user, nil)
}
