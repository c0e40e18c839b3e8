package user

// User is a backend account. Permissions holds the raw grant names as
// the auth service returns them.
type User struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`

	// Password is set only on create and update requests; the backend
	// never returns it.
	Password string `json:"password,omitempty"`
}
