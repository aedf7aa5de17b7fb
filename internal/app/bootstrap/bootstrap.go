package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	content "campus/contexts/community/content-service"
	contentmemory "campus/contexts/community/content-service/adapters/memory"
	contentpostgres "campus/contexts/community/content-service/adapters/postgres"
	contententities "campus/contexts/community/content-service/domain/entities"
	identity "campus/contexts/identity-access/identity-service"
	identitymemory "campus/contexts/identity-access/identity-service/adapters/memory"
	identitypostgres "campus/contexts/identity-access/identity-service/adapters/postgres"
	"campus/contexts/identity-access/identity-service/adapters/security"
	identityentities "campus/contexts/identity-access/identity-service/domain/entities"
	identityports "campus/contexts/identity-access/identity-service/ports"
	enrollment "campus/contexts/learning/enrollment-service"
	enrollmentmemory "campus/contexts/learning/enrollment-service/adapters/memory"
	enrollmentpostgres "campus/contexts/learning/enrollment-service/adapters/postgres"
	enrollmentports "campus/contexts/learning/enrollment-service/ports"
	"campus/internal/app/audit"
	"campus/internal/platform/config"
	"campus/internal/platform/db"
	"campus/internal/platform/httpserver"
	"campus/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	consumer audit.Consumer
	enabled  bool
	logger   *slog.Logger
}

type WorkerApp struct {
	consumer audit.Consumer
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	bus := messaging.NewBus(logger)
	publisher := messaging.TopicPublisher{Bus: bus, Topic: audit.Topic}

	var (
		pg               *db.Postgres
		identityModule   identity.Module
		enrollmentModule enrollment.Module
		contentModule    content.Module
	)

	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		// Local/dev runs without a database keep everything in memory.
		enrollmentModule = enrollment.NewInMemoryModule(logger, publisher)
		contentModule = content.NewInMemoryModule(logger, publisher)

		identityStore := identitymemory.NewStore()
		identityModule = identity.NewModule(identity.Dependencies{
			Repository: memoryProjectionRepo{
				Store:      identityStore,
				enrollment: enrollmentModule.Store,
				content:    contentModule.Store,
			},
			Sessions:   identityStore,
			Hasher:     security.BcryptHasher{Cost: cfg.BcryptCost},
			Tokens:     security.UUIDTokenSource{},
			Clock:      identityStore,
			SessionTTL: cfg.SessionTTL,
			Logger:     logger,
		})
	} else {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if cfg.RunMigrations {
			if err := pg.Migrate(); err != nil {
				_ = pg.Close()
				return nil, err
			}
		}

		clock := security.SystemClock{}
		identityModule = identity.NewModule(identity.Dependencies{
			Repository: identitypostgres.NewRepository(pg.DB, logger),
			Sessions:   identitypostgres.NewRepository(pg.DB, logger),
			Hasher:     security.BcryptHasher{Cost: cfg.BcryptCost},
			Tokens:     security.UUIDTokenSource{},
			Clock:      clock,
			SessionTTL: cfg.SessionTTL,
			Logger:     logger,
		})
		enrollmentModule = enrollment.NewModule(enrollment.Dependencies{
			Repository: enrollmentpostgres.NewRepository(pg.DB, logger),
			Clock:      clock,
			Events:     publisher,
			Logger:     logger,
		})
		contentModule = content.NewModule(content.Dependencies{
			Repository: contentpostgres.NewRepository(pg.DB, logger),
			Clock:      clock,
			Events:     publisher,
			Logger:     logger,
		})
	}

	server := httpserver.New(identityModule, enrollmentModule, contentModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		consumer: audit.Consumer{Bus: bus, ConsumerGroup: "campus-audit-cg", Logger: logger},
		enabled:  cfg.EnableAuditConsumer,
		logger:   logger,
	}, nil
}

// BuildWorker wires the standalone audit consumer process. The bus is
// in-process, so this worker only sees events published by code running in
// the same process; it exists to keep the consumer deployable on its own once
// an external broker lands.
func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	bus := messaging.NewBus(logger)
	return &WorkerApp{
		consumer: audit.Consumer{Bus: bus, ConsumerGroup: "campus-audit-cg", Logger: logger},
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.enabled {
		if err := a.consumer.Start(ctx); err != nil {
			return err
		}
	}
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.consumer.Start(ctx); err != nil {
		return err
	}
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	<-ctx.Done()
	return nil
}

func (w *WorkerApp) Close() error {
	return nil
}

// memoryProjectionRepo keeps the enrollment and content user projections in
// step with the identity store when everything runs in memory. Postgres mode
// gets the same effect from the shared users table.
type memoryProjectionRepo struct {
	*identitymemory.Store
	enrollment *enrollmentmemory.Store
	content    *contentmemory.Store
}

func (r memoryProjectionRepo) CreateUser(ctx context.Context, input identityports.CreateUserInput) (identityentities.User, error) {
	user, err := r.Store.CreateUser(ctx, input)
	if err != nil {
		return user, err
	}
	r.project(user)
	return user, nil
}

func (r memoryProjectionRepo) UpdateUser(
	ctx context.Context,
	id int64,
	patch identityports.UpdateUserInput,
	now time.Time,
) (identityentities.User, bool, error) {
	user, found, err := r.Store.UpdateUser(ctx, id, patch, now)
	if err == nil && found {
		r.project(user)
	}
	return user, found, err
}

func (r memoryProjectionRepo) project(user identityentities.User) {
	r.enrollment.PutUser(enrollmentports.UserProjection{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	})
	r.content.PutUser(contententities.Author{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	})
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
