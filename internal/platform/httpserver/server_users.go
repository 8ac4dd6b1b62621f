package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	userservice "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service"
	userdomainerrors "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/domain/errors"
	userhttp "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/transport/http"
	_ "github.com/sajithdilhan/ECommerceBackend/internal/platform/httpserver/docs"
)

// UserServer is the HTTP boundary of the user registry process.
type UserServer struct {
	mux    *http.ServeMux
	srv    *http.Server
	logger *slog.Logger
	apiKey string
	users  userservice.Module
}

func NewUserServer(module userservice.Module, logger *slog.Logger, addr string, apiKey string) *UserServer {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &UserServer{
		mux:    http.NewServeMux(),
		logger: logger,
		apiKey: apiKey,
		users:  module,
	}
	s.registerRoutes()
	s.srv = &http.Server{
		Addr:    addr,
		Handler: requestLogging(logger, s.mux),
	}
	return s
}

func (s *UserServer) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.srv.Addr,
	)
	return s.srv.ListenAndServe()
}

func (s *UserServer) Shutdown(ctx context.Context) error {
	return shutdownServer(ctx, s.srv)
}

func (s *UserServer) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", handleHealthz)

	s.mux.HandleFunc("POST /api/users", s.handleCreateUser)
	s.mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)
}

func (s *UserServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if !authorized(r, s.apiKey) {
		writeUserError(w, http.StatusUnauthorized, "unauthorized", "valid X-API-KEY header is required")
		return
	}

	var req userhttp.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeUserError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.users.Handler.CreateUserHandler(r.Context(), req)
	if err != nil {
		writeUserDomainError(w, err)
		return
	}
	w.Header().Set("Location", "/api/users/"+resp.ID)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *UserServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if !authorized(r, s.apiKey) {
		writeUserError(w, http.StatusUnauthorized, "unauthorized", "valid X-API-KEY header is required")
		return
	}

	resp, err := s.users.Handler.GetUserHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeUserDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeUserError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, userhttp.ErrorResponse{Code: code, Message: message})
}

func writeUserDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userdomainerrors.ErrInvalidRequest):
		writeUserError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, userdomainerrors.ErrUserNotFound):
		writeUserError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, userdomainerrors.ErrEmailTaken):
		writeUserError(w, http.StatusConflict, "email_taken", err.Error())
	default:
		writeUserError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
