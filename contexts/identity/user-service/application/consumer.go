package application

import (
	"context"
	"log/slog"

	"github.com/sajithdilhan/ECommerceBackend/internal/shared/events"
)

// OrderEventsHandler consumes order-created events from the order registry.
// The user registry keeps no order projection; sightings are logged only.
type OrderEventsHandler struct {
	Logger *slog.Logger
}

func (h OrderEventsHandler) OnOrderCreated(ctx context.Context, key string, event events.OrderCreatedEvent) error {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("order created for user",
		"event", "order_created_observed",
		"module", "identity/user-service",
		"layer", "application",
		"order_id", event.OrderID,
		"user_id", event.UserID,
		"product", event.Product,
	)
	return nil
}
