package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/application"
	"github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/ports"
	httptransport "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateUserHandler(ctx context.Context, req httptransport.CreateUserRequest) (httptransport.UserResponse, error) {
	user, err := h.Service.CreateUser(ctx, ports.CreateUserInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (h Handler) GetUserHandler(ctx context.Context, id string) (httptransport.UserResponse, error) {
	user, err := h.Service.GetUserByID(ctx, id)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func toUserResponse(user ports.User) httptransport.UserResponse {
	return httptransport.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}
