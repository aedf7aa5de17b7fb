package httptransport

import "time"

// RegisterRequest is the registration request body.
type RegisterRequest struct {
	Username   string `json:"username,omitempty"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Bio        string `json:"bio,omitempty"`
	GithubURL  string `json:"github_url,omitempty"`
	Mobile     string `json:"mobile,omitempty"`
	Specialism string `json:"specialism,omitempty"`
}

// LoginRequest is the credential check request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the opaque session token plus the logged-in user.
type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UpdateUserRequest is a partial profile patch; absent fields are untouched.
type UpdateUserRequest struct {
	Username   *string `json:"username,omitempty"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	GithubURL  *string `json:"github_url,omitempty"`
	Mobile     *string `json:"mobile,omitempty"`
	Specialism *string `json:"specialism,omitempty"`
}

// UserDTO is the public user shape; the password hash never crosses this
// boundary.
type UserDTO struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username,omitempty"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Bio        string    `json:"bio"`
	GithubURL  string    `json:"github_url"`
	Mobile     string    `json:"mobile"`
	Specialism string    `json:"specialism"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListUsersResponse struct {
	Users []UserDTO `json:"users"`
}
