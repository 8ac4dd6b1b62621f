package application

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	domainerrors "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/domain/errors"
	"github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/ports"
	"github.com/sajithdilhan/ECommerceBackend/internal/shared/events"
)

type Service struct {
	Repo      ports.Repository
	Publisher ports.EventPublisher
	Cache     ports.UserCache
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// CreateUser persists a new user and emits a user-created event. The event
// publish is part of the write path: if the broker rejects the hand-off the
// whole operation is reported as failed, even though the row is committed.
func (s Service) CreateUser(ctx context.Context, input ports.CreateUserInput) (ports.User, error) {
	logger := s.logger()

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" || !isValidEmail(input.Email) {
		return ports.User{}, domainerrors.ErrInvalidRequest
	}

	if _, exists, err := s.Repo.GetUserByEmail(ctx, input.Email); err != nil {
		return ports.User{}, err
	} else if exists {
		logger.Warn("conflict creating user",
			"event", "user_create_conflict",
			"module", "identity/user-service",
			"layer", "application",
			"email", input.Email,
		)
		return ports.User{}, domainerrors.ErrEmailTaken
	}

	id, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ports.User{}, err
	}

	created, err := s.Repo.CreateUser(ctx, ports.User{
		ID:        id,
		Name:      input.Name,
		Email:     input.Email,
		CreatedAt: s.Clock.Now().UTC(),
	})
	if err != nil {
		return ports.User{}, err
	}

	if err := s.Publisher.Publish(ctx, created.ID, events.UserCreatedEvent{
		UserID: created.ID,
		Name:   created.Name,
		Email:  created.Email,
	}); err != nil {
		logger.Error("user created but event publish failed",
			"event", "user_created_publish_failed",
			"module", "identity/user-service",
			"layer", "application",
			"user_id", created.ID,
			"error", err.Error(),
		)
		return ports.User{}, err
	}

	if err := s.Cache.PutUser(ctx, created); err != nil {
		logger.Warn("user cache warm failed",
			"event", "user_cache_warm_failed",
			"module", "identity/user-service",
			"layer", "application",
			"user_id", created.ID,
			"error", err.Error(),
		)
	}

	logger.Info("user created",
		"event", "user_created",
		"module", "identity/user-service",
		"layer", "application",
		"user_id", created.ID,
	)
	return created, nil
}

// GetUserByID serves the cached read path. Entries may be stale for up to
// the cache TTL; users are treated as nearly immutable once created.
func (s Service) GetUserByID(ctx context.Context, id string) (ports.User, error) {
	if strings.TrimSpace(id) == "" {
		return ports.User{}, domainerrors.ErrInvalidRequest
	}
	return s.Cache.GetOrLoadUser(ctx, id, func(ctx context.Context) (ports.User, error) {
		return s.Repo.GetUserByID(ctx, id)
	})
}

func (s Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
