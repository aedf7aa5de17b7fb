package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"campus/contexts/identity-access/accesspolicy"
	"campus/contexts/identity-access/identity-service/domain/entities"
	"campus/contexts/identity-access/identity-service/ports"
)

// Store is the in-memory users/sessions adapter used by tests and local runs.
type Store struct {
	mu sync.RWMutex

	usersByID  map[int64]entities.User
	sessions   map[string]entities.Session
	nextUserID int64
}

func NewStore() *Store {
	return &Store{
		usersByID:  make(map[int64]entities.User),
		sessions:   make(map[string]entities.Session),
		nextUserID: 1,
	}
}

func (s *Store) CreateUser(ctx context.Context, input ports.CreateUserInput) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := entities.User{
		ID:           s.nextUserID,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Bio:          input.Bio,
		GithubURL:    input.GithubURL,
		Mobile:       input.Mobile,
		Specialism:   input.Specialism,
		Role:         accesspolicy.Role(input.Role),
		CreatedAt:    input.CreatedAt.UTC(),
		UpdatedAt:    input.CreatedAt.UTC(),
	}
	s.nextUserID++
	s.usersByID[user.ID] = user
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (entities.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.usersByID[id]
	return user, ok, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (entities.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.usersByID {
		if strings.EqualFold(user.Email, email) {
			return user, true, nil
		}
	}
	return entities.User{}, false, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (entities.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.usersByID {
		if user.Username != "" && user.Username == username {
			return user, true, nil
		}
	}
	return entities.User{}, false, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.User, 0, len(s.usersByID))
	for id := int64(1); id < s.nextUserID; id++ {
		if user, ok := s.usersByID[id]; ok {
			items = append(items, user)
		}
	}
	return items, nil
}

func (s *Store) UpdateUser(ctx context.Context, id int64, patch ports.UpdateUserInput, now time.Time) (entities.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByID[id]
	if !ok {
		return entities.User{}, false, nil
	}
	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&user.Username, patch.Username)
	applyString(&user.FirstName, patch.FirstName)
	applyString(&user.LastName, patch.LastName)
	applyString(&user.Bio, patch.Bio)
	applyString(&user.GithubURL, patch.GithubURL)
	applyString(&user.Mobile, patch.Mobile)
	applyString(&user.Specialism, patch.Specialism)
	user.UpdatedAt = now.UTC()
	s.usersByID[id] = user
	return user, true, nil
}

func (s *Store) CreateSession(ctx context.Context, session entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string, now time.Time) (entities.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return entities.Session{}, false, nil
	}
	if now.UTC().After(session.ExpiresAt.UTC()) {
		delete(s.sessions, token)
		return entities.Session{}, false, nil
	}
	return session, true, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.Repository = (*Store)(nil)
var _ ports.SessionStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
