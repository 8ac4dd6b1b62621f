package application

import (
	"context"

	"github.com/sajithdilhan/ECommerceBackend/internal/shared/events"
)

// UserEventsHandler consumes user-created events and maintains the known-user
// replica. Errors bubble up to the subscriber's generic handling: logged and
// dropped, never retried here.
type UserEventsHandler struct {
	Service Service
}

func (h UserEventsHandler) OnUserCreated(ctx context.Context, key string, event events.UserCreatedEvent) error {
	userID := event.UserID
	if userID == "" {
		userID = key
	}
	return h.Service.RegisterKnownUser(ctx, userID, event.Email)
}
