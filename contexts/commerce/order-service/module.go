package orderservice

import (
	"log/slog"
	"time"

	httpadapter "github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/adapters/http"
	"github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/adapters/memory"
	"github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/application"
	"github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/ports"
)

// Module is the composition surface for the order registry. Runtime wiring
// consumes Handler and Consumer; Store is exposed for tests/inspection.
type Module struct {
	Handler  httpadapter.Handler
	Consumer application.UserEventsHandler
	Store    *memory.Store
}

type Dependencies struct {
	Repo       ports.Repository
	KnownUsers ports.KnownUserRepository
	Publisher  ports.EventPublisher
	Cache      ports.OrderCache
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// NewModule wires the order registry use-cases against explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:       deps.Repo,
		KnownUsers: deps.KnownUsers,
		Publisher:  deps.Publisher,
		Cache:      deps.Cache,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	return Module{
		Handler:  httpadapter.Handler{Service: service, Logger: deps.Logger},
		Consumer: application.UserEventsHandler{Service: service},
	}
}

// NewInMemoryModule wires the order registry against in-memory adapters.
// Used by tests and by local bootstrap when no Postgres/Redis is configured.
func NewInMemoryModule(publisher ports.EventPublisher, cacheTTL time.Duration, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:       store,
		KnownUsers: store,
		Publisher:  publisher,
		Cache:      memory.NewOrderCache(cacheTTL),
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
