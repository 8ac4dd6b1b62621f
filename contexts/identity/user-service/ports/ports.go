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

type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

type CreateUserInput struct {
	Name  string
	Email string
}

type Repository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, bool, error)
}

// EventPublisher hands a payload to the broker keyed by entity id. The
// target topic is fixed by the wired publisher instance.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// UserCache is the look-aside cache over user reads. A miss invokes loader
// and populates the entry; Put warms the entry after a create.
type UserCache interface {
	GetOrLoadUser(ctx context.Context, id string, loader func(context.Context) (User, error)) (User, error)
	PutUser(ctx context.Context, user User) error
}
