package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/movement-management/internal/models"
	"github.com/rogerio-castellano/movement-management/internal/repo"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// countingRepository records how often FindByID reaches the backing store.
type countingRepository struct {
	*repo.InMemoryMovementRepository
	lookups int
}

func (c *countingRepository) FindByID(ctx context.Context, id string) (models.Movement, error) {
	c.lookups++
	return c.InMemoryMovementRepository.FindByID(ctx, id)
}

func newCachedRepo(t *testing.T) (*repo.CachedMovementRepository, *countingRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	backing := &countingRepository{InMemoryMovementRepository: repo.NewInMemoryMovementRepository()}
	return repo.NewCachedMovementRepository(backing, rdb, time.Minute, zerolog.Nop()), backing, mr
}

func TestCachedMovementRepository_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cached, backing, mr := newCachedRepo(t)

	if _, err := backing.InMemoryMovementRepository.Create(ctx, newMovement("m1", "C1", "P1", 100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for range 3 {
		m, err := cached.FindByID(ctx, "m1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.ClientID != "C1" {
			t.Errorf("expected client C1, got %s", m.ClientID)
		}
	}

	if backing.lookups != 1 {
		t.Errorf("expected 1 backing lookup, got %d", backing.lookups)
	}
	if !mr.Exists("movement:m1") {
		t.Error("expected movement:m1 to be cached")
	}
	if ttl := mr.TTL("movement:m1"); ttl != time.Minute {
		t.Errorf("expected ttl of one minute, got %v", ttl)
	}
}

func TestCachedMovementRepository_WritesRefreshCache(t *testing.T) {
	ctx := context.Background()
	cached, backing, mr := newCachedRepo(t)

	created, err := cached.Create(ctx, newMovement("m1", "C1", "P1", 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created.Amount = decimal.NewFromInt(300)
	if _, err := cached.Update(ctx, created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := cached.FindByID(ctx, "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Amount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected cached amount 300, got %s", got.Amount)
	}
	if backing.lookups != 0 {
		t.Errorf("expected reads to be served from cache, got %d backing lookups", backing.lookups)
	}

	if err := cached.Delete(ctx, "m1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := mr.Get("movement:m1"); v != "-" {
		t.Errorf("expected movement:m1 to hold a tombstone after delete, got %q", v)
	}
	if _, err := cached.FindByID(ctx, "m1"); !errors.Is(err, repo.ErrMovementNotFound) {
		t.Errorf("expected ErrMovementNotFound, got %v", err)
	}
}

func TestCachedMovementRepository_RedisDown(t *testing.T) {
	ctx := context.Background()
	cached, backing, mr := newCachedRepo(t)

	if _, err := backing.InMemoryMovementRepository.Create(ctx, newMovement("m1", "C1", "P1", 100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mr.Close()

	m, err := cached.FindByID(ctx, "m1")
	if err != nil {
		t.Fatalf("expected fallback to backing repository, got error: %v", err)
	}
	if m.ID != "m1" {
		t.Errorf("expected m1, got %s", m.ID)
	}
}

func TestCachedMovementRepository_ListsBypassCache(t *testing.T) {
	ctx := context.Background()
	cached, _, _ := newCachedRepo(t)

	for _, m := range []models.Movement{
		newMovement("m1", "C1", "P1", 1),
		newMovement("m2", "C2", "P1", 2),
	} {
		if _, err := cached.Create(ctx, m); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	byProduct, err := repo.Collect(cached.FindByProductID(ctx, "P1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byProduct) != 2 {
		t.Errorf("expected 2 movements for P1, got %d", len(byProduct))
	}
}

// pausingRepository holds its first FindByID after reading the movement until
// release is closed, simulating a slow backing read.
type pausingRepository struct {
	*repo.InMemoryMovementRepository
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func (p *pausingRepository) FindByID(ctx context.Context, id string) (models.Movement, error) {
	m, err := p.InMemoryMovementRepository.FindByID(ctx, id)
	p.once.Do(func() {
		close(p.loaded)
		<-p.release
	})
	return m, err
}

func TestCachedMovementRepository_SlowReadDoesNotResurrect(t *testing.T) {
	tests := []struct {
		name  string
		write func(ctx context.Context, cached *repo.CachedMovementRepository) error
		check func(t *testing.T, m models.Movement, err error)
	}{
		{
			name: "delete",
			write: func(ctx context.Context, cached *repo.CachedMovementRepository) error {
				return cached.Delete(ctx, "m1")
			},
			check: func(t *testing.T, m models.Movement, err error) {
				if !errors.Is(err, repo.ErrMovementNotFound) {
					t.Errorf("expected ErrMovementNotFound after delete, got %+v (err %v)", m, err)
				}
			},
		},
		{
			name: "update",
			write: func(ctx context.Context, cached *repo.CachedMovementRepository) error {
				_, err := cached.Update(ctx, newMovement("m1", "C2", "P1", 200))
				return err
			},
			check: func(t *testing.T, m models.Movement, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if m.ClientID != "C2" {
					t.Errorf("expected updated client C2, got %s", m.ClientID)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { rdb.Close() })

			backing := &pausingRepository{
				InMemoryMovementRepository: repo.NewInMemoryMovementRepository(),
				loaded:                     make(chan struct{}),
				release:                    make(chan struct{}),
			}
			if _, err := backing.InMemoryMovementRepository.Create(ctx, newMovement("m1", "C1", "P1", 100)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			cached := repo.NewCachedMovementRepository(backing, rdb, time.Minute, zerolog.Nop())

			done := make(chan struct{})
			go func() {
				defer close(done)
				cached.FindByID(ctx, "m1")
			}()

			<-backing.loaded
			if err := tt.write(ctx, cached); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			close(backing.release)
			<-done

			m, err := cached.FindByID(ctx, "m1")
			tt.check(t, m, err)
		})
	}
}
