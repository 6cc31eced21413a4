package repo

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/movement-management/internal/models"
	"github.com/rs/zerolog"
)

const (
	movementKeyPrefix = "movement:"
	tombstone         = "-"
)

// CachedMovementRepository puts a Redis read-through cache in front of FindByID.
// Lists always go to the wrapped repository. Redis faults are logged and never
// fail a call.
type CachedMovementRepository struct {
	next   MovementRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedMovementRepository(next MovementRepository, rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedMovementRepository {
	return &CachedMovementRepository{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With().Str("component", "movement_cache").Logger(),
	}
}

func movementKey(id string) string {
	return movementKeyPrefix + id
}

func (c *CachedMovementRepository) FindAll(ctx context.Context) iter.Seq2[models.Movement, error] {
	return c.next.FindAll(ctx)
}

func (c *CachedMovementRepository) FindByClientID(ctx context.Context, clientID string) iter.Seq2[models.Movement, error] {
	return c.next.FindByClientID(ctx, clientID)
}

func (c *CachedMovementRepository) FindByProductID(ctx context.Context, productID string) iter.Seq2[models.Movement, error] {
	return c.next.FindByProductID(ctx, productID)
}

// FindByID fills the cache under WATCH on the movement key. A write landing
// between the backing read and the fill changes the key, so the fill is dropped
// instead of resurrecting the old movement.
func (c *CachedMovementRepository) FindByID(ctx context.Context, id string) (models.Movement, error) {
	key := movementKey(id)

	var (
		m       models.Movement
		loadErr error
		loaded  bool
	)
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		if cached, ok := c.lookup(ctx, tx, id); ok {
			m, loaded = cached, true
			return nil
		}

		m, loadErr = c.next.FindByID(ctx, id)
		loaded = true
		if loadErr != nil {
			return nil
		}

		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		c.logger.Debug().Str("movement_id", id).Msg("movement changed while loading, cache fill skipped")
	case err != nil:
		c.logger.Warn().Err(err).Str("movement_id", id).Msg("cache fill failed")
	}

	if !loaded {
		return c.next.FindByID(ctx, id)
	}
	if loadErr != nil {
		return models.Movement{}, loadErr
	}
	return m, nil
}

// lookup reads id from the cache. Tombstones and undecodable entries count as misses.
func (c *CachedMovementRepository) lookup(ctx context.Context, tx *redis.Tx, id string) (models.Movement, bool) {
	data, err := tx.Get(ctx, movementKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("movement_id", id).Msg("cache read failed")
		}
		return models.Movement{}, false
	}
	if string(data) == tombstone {
		return models.Movement{}, false
	}

	var m models.Movement
	if err := json.Unmarshal(data, &m); err != nil {
		c.logger.Warn().Str("movement_id", id).Msg("discarding undecodable cache entry")
		return models.Movement{}, false
	}
	return m, true
}

func (c *CachedMovementRepository) Create(ctx context.Context, m models.Movement) (models.Movement, error) {
	created, err := c.next.Create(ctx, m)
	if err != nil {
		return models.Movement{}, err
	}
	c.store(ctx, created)
	return created, nil
}

func (c *CachedMovementRepository) Update(ctx context.Context, m models.Movement) (models.Movement, error) {
	updated, err := c.next.Update(ctx, m)
	if err != nil {
		c.invalidate(ctx, m.ID)
		return models.Movement{}, err
	}
	c.store(ctx, updated)
	return updated, nil
}

func (c *CachedMovementRepository) Delete(ctx context.Context, id string) error {
	err := c.next.Delete(ctx, id)
	c.invalidate(ctx, id)
	return err
}

func (c *CachedMovementRepository) store(ctx context.Context, m models.Movement) {
	data, err := json.Marshal(m)
	if err != nil {
		c.logger.Warn().Err(err).Str("movement_id", m.ID).Msg("could not encode movement for cache")
		return
	}
	if err := c.rdb.Set(ctx, movementKey(m.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("movement_id", m.ID).Msg("cache write failed")
	}
}

// invalidate overwrites the key with a tombstone rather than deleting it. DEL on a
// missing key does not touch it, so a fill watching that key would still commit.
func (c *CachedMovementRepository) invalidate(ctx context.Context, id string) {
	if err := c.rdb.Set(ctx, movementKey(id), tombstone, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("movement_id", id).Msg("cache invalidation failed")
	}
}
