package content

import (
	"log/slog"

	httpadapter "campus/contexts/community/content-service/adapters/http"
	"campus/contexts/community/content-service/adapters/memory"
	"campus/contexts/community/content-service/application"
	"campus/contexts/community/content-service/ports"
)

// Module is the content-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository ports.Repository
	Clock      ports.Clock
	Events     ports.EventPublisher
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
		Clock:  deps.Clock,
		Events: deps.Events,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// persistence.
func NewInMemoryModule(logger *slog.Logger, events ports.EventPublisher) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Clock:      store,
		Events:     events,
		Logger:     logger,
	})
	module.Store = store
	return module
}
