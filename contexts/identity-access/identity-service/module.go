package identity

import (
	"log/slog"
	"time"

	httpadapter "campus/contexts/identity-access/identity-service/adapters/http"
	"campus/contexts/identity-access/identity-service/adapters/memory"
	"campus/contexts/identity-access/identity-service/adapters/security"
	"campus/contexts/identity-access/identity-service/application"
	"campus/contexts/identity-access/identity-service/ports"
)

// Module is the identity-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository ports.Repository
	Sessions   ports.SessionStore
	Hasher     ports.PasswordHasher
	Tokens     ports.TokenSource
	Clock      ports.Clock
	SessionTTL time.Duration
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:       deps.Repository,
		Sessions:   deps.Sessions,
		Hasher:     deps.Hasher,
		Tokens:     deps.Tokens,
		Clock:      deps.Clock,
		SessionTTL: deps.SessionTTL,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// persistence and a low bcrypt cost.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Sessions:   store,
		Hasher:     security.BcryptHasher{Cost: 4},
		Tokens:     security.UUIDTokenSource{},
		Clock:      store,
		SessionTTL: 24 * time.Hour,
		Logger:     logger,
	})
	module.Store = store
	return module
}
