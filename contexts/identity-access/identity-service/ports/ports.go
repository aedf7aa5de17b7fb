package ports

import (
	"context"
	"time"

	"campus/contexts/identity-access/identity-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// PasswordHasher hides the hashing primitive from the application core.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash string, plain string) bool
}

// TokenSource mints opaque session token values.
type TokenSource interface {
	NewToken() string
}

// CreateUserInput is the persisted registration payload.
type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
	FirstName    string
	LastName     string
	Bio          string
	GithubURL    string
	Mobile       string
	Specialism   string
	CreatedAt    time.Time
}

// UpdateUserInput is a partial profile patch; nil fields are untouched.
type UpdateUserInput struct {
	Username   *string
	FirstName  *string
	LastName   *string
	Bio        *string
	GithubURL  *string
	Mobile     *string
	Specialism *string
}

// Repository is the persistence boundary for users.
type Repository interface {
	CreateUser(ctx context.Context, input CreateUserInput) (entities.User, error)
	GetUserByID(ctx context.Context, id int64) (entities.User, bool, error)
	GetUserByEmail(ctx context.Context, email string) (entities.User, bool, error)
	GetUserByUsername(ctx context.Context, username string) (entities.User, bool, error)
	ListUsers(ctx context.Context) ([]entities.User, error)
	UpdateUser(ctx context.Context, id int64, patch UpdateUserInput, now time.Time) (entities.User, bool, error)
}

// SessionStore persists opaque token sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session entities.Session) error
	GetSession(ctx context.Context, token string, now time.Time) (entities.Session, bool, error)
	DeleteSession(ctx context.Context, token string) error
}
