package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rogerio-castellano/movement-management/internal/http/handlers"
	"github.com/rogerio-castellano/movement-management/internal/http/router"
	"github.com/rogerio-castellano/movement-management/internal/models"
	"github.com/rogerio-castellano/movement-management/internal/repo"
	"github.com/rogerio-castellano/movement-management/internal/service"
	"github.com/rs/zerolog"
)

var errBoom = errors.New("storage exploded")

func newTestRouter(t *testing.T) (http.Handler, *repo.InMemoryMovementRepository) {
	t.Helper()
	movementRepo := repo.NewInMemoryMovementRepository()
	svc := service.NewMovementService(movementRepo, nil, zerolog.Nop())

	r := router.NewRouter(router.Options{
		Movements: handlers.NewMovementHandler(svc, zerolog.Nop()),
		Metrics:   handlers.NewMetricsHandler(repo.NewInMemoryMetricsRepository(movementRepo), zerolog.Nop()),
		Health:    handlers.NewHealthHandler(zerolog.Nop()),
		Logger:    zerolog.Nop(),
	})
	return r, movementRepo
}

func doRequest(r http.Handler, method, path string, body any, headers ...map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createMovement(t *testing.T, r http.Handler, body string) models.Movement {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/movement", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}

	var created models.Movement
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	return created
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []models.Movement {
	t.Helper()
	var movements []models.Movement
	if err := json.NewDecoder(w.Body).Decode(&movements); err != nil {
		t.Fatalf("error decoding list response: %v (body %q)", err, w.Body.String())
	}
	return movements
}

// failingService fails every call with errBoom.
type failingService struct{}

func failingSeq() iter.Seq2[models.Movement, error] {
	return func(yield func(models.Movement, error) bool) {
		yield(models.Movement{}, errBoom)
	}
}

func (failingService) FindMovements(context.Context) iter.Seq2[models.Movement, error] {
	return failingSeq()
}
func (failingService) FindByID(context.Context, string) (models.Movement, error) {
	return models.Movement{}, errBoom
}
func (failingService) FindByClientID(context.Context, string) iter.Seq2[models.Movement, error] {
	return failingSeq()
}
func (failingService) FindByProductID(context.Context, string) iter.Seq2[models.Movement, error] {
	return failingSeq()
}
func (failingService) CreateMovement(context.Context, models.Movement) (models.Movement, error) {
	return models.Movement{}, errBoom
}
func (failingService) UpdateMovement(context.Context, string, models.Movement) (models.Movement, error) {
	return models.Movement{}, errBoom
}
func (failingService) DeleteMovement(context.Context, string) error {
	return errBoom
}

var _ service.MovementService = failingService{}
