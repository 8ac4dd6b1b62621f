package userservice

import (
	"log/slog"
	"time"

	httpadapter "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/adapters/http"
	"github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/adapters/memory"
	"github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/application"
	"github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/ports"
)

// Module is the composition surface for the user registry. Runtime wiring
// consumes Handler; Store is exposed for tests/inspection.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repo      ports.Repository
	Publisher ports.EventPublisher
	Cache     ports.UserCache
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// NewModule wires the user registry use-cases against explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:      deps.Repo,
		Publisher: deps.Publisher,
		Cache:     deps.Cache,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
	}
}

// NewInMemoryModule wires the user registry against in-memory adapters.
// Used by tests and by local bootstrap when no Postgres/Redis is configured.
func NewInMemoryModule(publisher ports.EventPublisher, cacheTTL time.Duration, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:      store,
		Publisher: publisher,
		Cache:     memory.NewUserCache(cacheTTL),
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
