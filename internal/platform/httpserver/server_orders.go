package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	orderservice "github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service"
	orderdomainerrors "github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/domain/errors"
	orderhttp "github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/transport/http"
)

// OrderServer is the HTTP boundary of the order registry process.
type OrderServer struct {
	mux    *http.ServeMux
	srv    *http.Server
	logger *slog.Logger
	apiKey string
	orders orderservice.Module
}

func NewOrderServer(module orderservice.Module, logger *slog.Logger, addr string, apiKey string) *OrderServer {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8081"
	}

	s := &OrderServer{
		mux:    http.NewServeMux(),
		logger: logger,
		apiKey: apiKey,
		orders: module,
	}
	s.registerRoutes()
	s.srv = &http.Server{
		Addr:    addr,
		Handler: requestLogging(logger, s.mux),
	}
	return s
}

func (s *OrderServer) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.srv.Addr,
	)
	return s.srv.ListenAndServe()
}

func (s *OrderServer) Shutdown(ctx context.Context) error {
	return shutdownServer(ctx, s.srv)
}

func (s *OrderServer) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", handleHealthz)

	s.mux.HandleFunc("POST /api/orders", s.handleCreateOrder)
	s.mux.HandleFunc("GET /api/orders/{id}", s.handleGetOrder)
	s.mux.HandleFunc("GET /api/orders/by-user/{user_id}", s.handleListOrdersByUser)
}

func (s *OrderServer) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if !authorized(r, s.apiKey) {
		writeOrderError(w, http.StatusUnauthorized, "unauthorized", "valid X-API-KEY header is required")
		return
	}

	var req orderhttp.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOrderError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.orders.Handler.CreateOrderHandler(r.Context(), req)
	if err != nil {
		writeOrderDomainError(w, err)
		return
	}
	w.Header().Set("Location", "/api/orders/"+resp.ID)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *OrderServer) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	if !authorized(r, s.apiKey) {
		writeOrderError(w, http.StatusUnauthorized, "unauthorized", "valid X-API-KEY header is required")
		return
	}

	resp, err := s.orders.Handler.GetOrderHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeOrderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *OrderServer) handleListOrdersByUser(w http.ResponseWriter, r *http.Request) {
	if !authorized(r, s.apiKey) {
		writeOrderError(w, http.StatusUnauthorized, "unauthorized", "valid X-API-KEY header is required")
		return
	}

	resp, err := s.orders.Handler.ListOrdersByUserHandler(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeOrderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeOrderError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, orderhttp.ErrorResponse{Code: code, Message: message})
}

func writeOrderDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orderdomainerrors.ErrInvalidRequest):
		writeOrderError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, orderdomainerrors.ErrUnknownUser):
		writeOrderError(w, http.StatusBadRequest, "unknown_user", err.Error())
	case errors.Is(err, orderdomainerrors.ErrOrderNotFound):
		writeOrderError(w, http.StatusNotFound, "order_not_found", err.Error())
	default:
		writeOrderError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
