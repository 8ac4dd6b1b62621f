package application

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/domain/errors"
	"github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/ports"
	"github.com/sajithdilhan/ECommerceBackend/internal/shared/events"
)

type Service struct {
	Repo       ports.Repository
	KnownUsers ports.KnownUserRepository
	Publisher  ports.EventPublisher
	Cache      ports.OrderCache
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// CreateOrder validates the referenced user against the local replica, never
// against the remote user registry. A user that exists upstream but has not
// been replicated yet is rejected; that lag is the accepted trade-off for
// avoiding a synchronous cross-service call.
func (s Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (ports.Order, error) {
	logger := s.logger()

	input.UserID = strings.TrimSpace(input.UserID)
	input.Product = strings.TrimSpace(input.Product)
	if input.UserID == "" || input.Product == "" || input.Quantity <= 0 || input.Price < 0 {
		return ports.Order{}, domainerrors.ErrInvalidRequest
	}

	if _, known, err := s.KnownUsers.GetKnownUserByID(ctx, input.UserID); err != nil {
		return ports.Order{}, err
	} else if !known {
		logger.Warn("order rejected for unknown user",
			"event", "order_unknown_user",
			"module", "commerce/order-service",
			"layer", "application",
			"user_id", input.UserID,
		)
		return ports.Order{}, domainerrors.ErrUnknownUser
	}

	id, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ports.Order{}, err
	}

	created, err := s.Repo.CreateOrder(ctx, ports.Order{
		ID:        id,
		UserID:    input.UserID,
		Product:   input.Product,
		Quantity:  input.Quantity,
		Price:     input.Price,
		CreatedAt: s.Clock.Now().UTC(),
	})
	if err != nil {
		return ports.Order{}, err
	}

	if err := s.Publisher.Publish(ctx, created.ID, events.OrderCreatedEvent{
		OrderID:  created.ID,
		UserID:   created.UserID,
		Product:  created.Product,
		Quantity: created.Quantity,
		Price:    created.Price,
	}); err != nil {
		logger.Error("order created but event publish failed",
			"event", "order_created_publish_failed",
			"module", "commerce/order-service",
			"layer", "application",
			"order_id", created.ID,
			"error", err.Error(),
		)
		return ports.Order{}, err
	}

	if err := s.Cache.PutOrder(ctx, created); err != nil {
		logger.Warn("order cache warm failed",
			"event", "order_cache_warm_failed",
			"module", "commerce/order-service",
			"layer", "application",
			"order_id", created.ID,
			"error", err.Error(),
		)
	}

	logger.Info("order created",
		"event", "order_created",
		"module", "commerce/order-service",
		"layer", "application",
		"order_id", created.ID,
		"user_id", created.UserID,
	)
	return created, nil
}

// GetOrderByID serves the cached read path.
func (s Service) GetOrderByID(ctx context.Context, id string) (ports.Order, error) {
	if strings.TrimSpace(id) == "" {
		return ports.Order{}, domainerrors.ErrInvalidRequest
	}
	return s.Cache.GetOrLoadOrder(ctx, id, func(ctx context.Context) (ports.Order, error) {
		return s.Repo.GetOrderByID(ctx, id)
	})
}

func (s Service) GetOrdersByUser(ctx context.Context, userID string) ([]ports.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	return s.Repo.GetOrdersByUser(ctx, userID)
}

// RegisterKnownUser is the replica upsert: insert on first sighting, no-op on
// replay. First write wins; a replayed event with a changed email does not
// touch the existing entry. This method is the only writer of the replica.
func (s Service) RegisterKnownUser(ctx context.Context, userID string, email string) error {
	logger := s.logger()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domainerrors.ErrInvalidRequest
	}

	if _, exists, err := s.KnownUsers.GetKnownUserByID(ctx, userID); err != nil {
		return err
	} else if exists {
		return nil
	}

	if err := s.KnownUsers.CreateKnownUser(ctx, ports.KnownUser{UserID: userID, Email: email}); err != nil {
		return err
	}

	logger.Info("known user recorded",
		"event", "known_user_recorded",
		"module", "commerce/order-service",
		"layer", "application",
		"user_id", userID,
	)
	return nil
}

func (s Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
