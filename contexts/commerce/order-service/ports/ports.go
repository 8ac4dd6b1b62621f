package ports

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type Order struct {
	ID        string
	UserID    string
	Product   string
	Quantity  int
	Price     float64
	CreatedAt time.Time
}

type CreateOrderInput struct {
	UserID   string
	Product  string
	Quantity int
	Price    float64
}

// KnownUser is the local, eventually consistent projection of identity facts
// owned by the user registry. Entries are created on first sighting and never
// updated or deleted in normal operation.
type KnownUser struct {
	UserID string
	Email  string
}

type Repository interface {
	CreateOrder(ctx context.Context, order Order) (Order, error)
	GetOrderByID(ctx context.Context, id string) (Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]Order, error)
}

// KnownUserRepository backs the replica. CreateKnownUser must be check-then-act
// safe for the same key: concurrent inserts for one user id resolve to a single
// surviving row (uniqueness constraint, not an application lock).
type KnownUserRepository interface {
	GetKnownUserByID(ctx context.Context, userID string) (KnownUser, bool, error)
	CreateKnownUser(ctx context.Context, knownUser KnownUser) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// OrderCache is the look-aside cache over order reads.
type OrderCache interface {
	GetOrLoadOrder(ctx context.Context, id string, loader func(context.Context) (Order, error)) (Order, error)
	PutOrder(ctx context.Context, order Order) error
}
