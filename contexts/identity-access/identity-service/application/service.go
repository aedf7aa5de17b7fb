package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"campus/contexts/identity-access/accesspolicy"
	"campus/contexts/identity-access/identity-service/domain/entities"
	domainerrors "campus/contexts/identity-access/identity-service/domain/errors"
	"campus/contexts/identity-access/identity-service/ports"
	"campus/internal/shared/apperror"
)

// Service orchestrates registration, login and actor resolution.
type Service struct {
	Repo       ports.Repository
	Sessions   ports.SessionStore
	Hasher     ports.PasswordHasher
	Tokens     ports.TokenSource
	Clock      ports.Clock
	SessionTTL time.Duration
	Logger     *slog.Logger
}

// RegisterInput carries the raw registration request. Format rules for
// email/username/password are enforced upstream; only presence and role
// validity are checked here.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	Role       string
	FirstName  string
	LastName   string
	Bio        string
	GithubURL  string
	Mobile     string
	Specialism string
}

func (s Service) Register(ctx context.Context, input RegisterInput) (entities.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || strings.TrimSpace(input.Password) == "" {
		return entities.User{}, domainerrors.ErrMissingCredentials
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if !accesspolicy.IsValidRole(role) {
		return entities.User{}, domainerrors.ErrUnknownRole
	}

	if _, found, err := s.Repo.GetUserByEmail(ctx, email); err != nil {
		return entities.User{}, err
	} else if found {
		return entities.User{}, domainerrors.ErrEmailTaken
	}
	username := strings.TrimSpace(input.Username)
	if username != "" {
		if _, found, err := s.Repo.GetUserByUsername(ctx, username); err != nil {
			return entities.User{}, err
		} else if found {
			return entities.User{}, domainerrors.ErrUsernameTaken
		}
	}

	hash, err := s.Hasher.Hash(input.Password)
	if err != nil {
		return entities.User{}, err
	}

	user, err := s.Repo.CreateUser(ctx, ports.CreateUserInput{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Bio:          input.Bio,
		GithubURL:    strings.TrimSpace(input.GithubURL),
		Mobile:       strings.TrimSpace(input.Mobile),
		Specialism:   strings.TrimSpace(input.Specialism),
		CreatedAt:    s.now(),
	})
	if err != nil {
		return entities.User{}, err
	}

	resolveLogger(s.Logger).Info("user registered",
		"event", "identity_user_registered",
		"module", "identity-access/identity-service",
		"layer", "application",
		"user_id", user.ID,
		"role", user.Role,
	)
	return user, nil
}

// Login verifies credentials and opens a session, returning the opaque token.
func (s Service) Login(ctx context.Context, email string, password string) (string, entities.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", entities.User{}, domainerrors.ErrInvalidCredentials
	}
	user, found, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", entities.User{}, err
	}
	if !found || !s.Hasher.Compare(user.PasswordHash, password) {
		resolveLogger(s.Logger).Warn("login rejected",
			"event", "identity_login_rejected",
			"module", "identity-access/identity-service",
			"layer", "application",
			"email", email,
		)
		return "", entities.User{}, domainerrors.ErrInvalidCredentials
	}

	now := s.now()
	session := entities.Session{
		Token:     s.Tokens.NewToken(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL()),
	}
	if err := s.Sessions.CreateSession(ctx, session); err != nil {
		return "", entities.User{}, err
	}
	return session.Token, user, nil
}

// Logout discards the session for the given token. Unknown tokens are a no-op.
func (s Service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.Sessions.DeleteSession(ctx, token)
}

// ResolveActor turns an opaque credential into an authenticated actor.
func (s Service) ResolveActor(ctx context.Context, token string) (accesspolicy.Actor, error) {
	if strings.TrimSpace(token) == "" {
		return accesspolicy.Actor{}, domainerrors.ErrInvalidSession
	}
	session, found, err := s.Sessions.GetSession(ctx, strings.TrimSpace(token), s.now())
	if err != nil {
		return accesspolicy.Actor{}, err
	}
	if !found {
		return accesspolicy.Actor{}, domainerrors.ErrInvalidSession
	}
	user, found, err := s.Repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return accesspolicy.Actor{}, err
	}
	if !found {
		return accesspolicy.Actor{}, domainerrors.ErrInvalidSession
	}
	return accesspolicy.Actor{ID: user.ID, Role: user.Role, Authenticated: true}, nil
}

func (s Service) GetUser(ctx context.Context, id int64) (entities.User, error) {
	user, found, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		return entities.User{}, err
	}
	if !found {
		return entities.User{}, apperror.NotFoundf("User with Id %d not found.", id)
	}
	return user, nil
}

func (s Service) ListUsers(ctx context.Context) ([]entities.User, error) {
	return s.Repo.ListUsers(ctx)
}

// UpdateUser applies a profile patch. Users may edit themselves; teachers may
// edit anyone.
func (s Service) UpdateUser(ctx context.Context, actor accesspolicy.Actor, id int64, patch ports.UpdateUserInput) (entities.User, error) {
	if !actor.Authenticated || (actor.Role != accesspolicy.RoleTeacher && actor.ID != id) {
		return entities.User{}, apperror.Forbidden("You are not authorized to edit this user.")
	}
	if patch.Username != nil && strings.TrimSpace(*patch.Username) != "" {
		existing, found, err := s.Repo.GetUserByUsername(ctx, strings.TrimSpace(*patch.Username))
		if err != nil {
			return entities.User{}, err
		}
		if found && existing.ID != id {
			return entities.User{}, domainerrors.ErrUsernameTaken
		}
	}
	user, found, err := s.Repo.UpdateUser(ctx, id, patch, s.now())
	if err != nil {
		return entities.User{}, err
	}
	if !found {
		return entities.User{}, apperror.NotFoundf("User with Id %d not found.", id)
	}
	return user, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) sessionTTL() time.Duration {
	if s.SessionTTL <= 0 {
		return 24 * time.Hour
	}
	return s.SessionTTL
}
