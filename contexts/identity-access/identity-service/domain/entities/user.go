package entities

import (
	"time"

	"campus/contexts/identity-access/accesspolicy"
)

// User is a registered platform member. PasswordHash never leaves the
// identity context.
type User struct {
	ID           int64             `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"-"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	Bio          string            `json:"bio"`
	GithubURL    string            `json:"github_url"`
	Mobile       string            `json:"mobile"`
	Specialism   string            `json:"specialism"`
	Role         accesspolicy.Role `json:"role"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
