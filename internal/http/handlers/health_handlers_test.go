package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rogerio-castellano/movement-management/internal/http/handlers"
	"github.com/rogerio-castellano/movement-management/internal/http/router"
	"github.com/rogerio-castellano/movement-management/internal/repo"
	"github.com/rogerio-castellano/movement-management/internal/service"
	"github.com/rs/zerolog"
)

func healthRouter(h *handlers.HealthHandler) http.Handler {
	svc := service.NewMovementService(repo.NewInMemoryMovementRepository(), nil, zerolog.Nop())
	return router.NewRouter(router.Options{
		Movements: handlers.NewMovementHandler(svc, zerolog.Nop()),
		Health:    h,
		Logger:    zerolog.Nop(),
	})
}

func TestHealthHandler(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		h := handlers.NewHealthHandler(zerolog.Nop())
		h.Register("database", func(context.Context) error { return nil })

		w := doRequest(healthRouter(h), http.MethodGet, "/health", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}

		var resp handlers.HealthResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Status != "healthy" || resp.Checks["database"] != "healthy" {
			t.Errorf("unexpected health response %+v", resp)
		}
	})

	t.Run("Degraded", func(t *testing.T) {
		h := handlers.NewHealthHandler(zerolog.Nop())
		h.Register("database", func(context.Context) error { return nil })
		h.Register("redis", func(context.Context) error { return errors.New("connection refused") })

		w := doRequest(healthRouter(h), http.MethodGet, "/health", nil)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", w.Code)
		}

		var resp handlers.HealthResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Status != "degraded" {
			t.Errorf("expected degraded, got %s", resp.Status)
		}
		if !strings.HasPrefix(resp.Checks["redis"], "unhealthy") {
			t.Errorf("expected redis to be unhealthy, got %q", resp.Checks["redis"])
		}
		if resp.Checks["database"] != "healthy" {
			t.Errorf("expected database to be healthy, got %q", resp.Checks["database"])
		}
	})
}
