package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	userservice "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service"
	userhttp "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/transport/http"
)

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, key string, payload any) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestUserServer(apiKey string) *UserServer {
	module := userservice.NewInMemoryModule(nopPublisher{}, 5*time.Minute, discardLogger())
	return NewUserServer(module, discardLogger(), ":0", apiKey)
}

func doJSON(t *testing.T, mux *http.ServeMux, method, target, body, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if apiKey != "" {
		req.Header.Set(apiKeyHeader, apiKey)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestUserServerCreateAndGet(t *testing.T) {
	server := newTestUserServer("")

	rec := doJSON(t, server.mux, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	var created userhttp.UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" || created.Email != "ada@example.com" {
		t.Fatalf("unexpected response %+v", created)
	}
	if loc := rec.Header().Get("Location"); loc != "/api/users/"+created.ID {
		t.Fatalf("unexpected Location header %q", loc)
	}

	rec = doJSON(t, server.mux, http.MethodGet, "/api/users/"+created.ID, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var fetched userhttp.UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if fetched.ID != created.ID || fetched.CreatedAt == "" {
		t.Fatalf("unexpected response %+v", fetched)
	}
}

func TestUserServerErrorMapping(t *testing.T) {
	server := newTestUserServer("")

	// Seed a user so the conflict case has something to collide with.
	rec := doJSON(t, server.mux, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", rec.Code)
	}

	cases := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed json", http.MethodPost, "/api/users", `{"name":`, http.StatusBadRequest, "invalid_json"},
		{"invalid email", http.MethodPost, "/api/users", `{"name":"Ada","email":"nope"}`, http.StatusBadRequest, "invalid_request"},
		{"duplicate email", http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com"}`, http.StatusConflict, "email_taken"},
		{"unknown user", http.MethodGet, "/api/users/missing", "", http.StatusNotFound, "user_not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, server.mux, tc.method, tc.target, tc.body, "")
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d body=%s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			var errResp userhttp.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != tc.wantCode {
				t.Fatalf("expected code %q, got %q", tc.wantCode, errResp.Code)
			}
		})
	}
}

func TestUserServerAPIKey(t *testing.T) {
	server := newTestUserServer("secret")

	rec := doJSON(t, server.mux, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}
	rec = doJSON(t, server.mux, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com"}`, "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", rec.Code)
	}
	rec = doJSON(t, server.mux, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com"}`, "secret")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with key, got %d body=%s", rec.Code, rec.Body.String())
	}

	// Health stays open regardless of the configured key.
	rec = doJSON(t, server.mux, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open healthz, got %d", rec.Code)
	}
}
