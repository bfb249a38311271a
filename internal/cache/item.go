package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
)

const (
	keyPrefix = "item:"
	genPrefix = "item-gen:"
)

var errStale = errors.New("item generation changed")

// DefaultTTL is how long a cached item lives when no TTL is configured.
const DefaultTTL = 5 * time.Minute

// ItemCache stores items fetched by id in Redis as JSON.
type ItemCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewItemCache creates a Redis-backed item cache.
func NewItemCache(client redis.UniversalClient, ttl time.Duration) *ItemCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ItemCache{client: client, ttl: ttl}
}

// Get returns the cached item. A miss is reported with ok == false and a nil
// error.
func (c *ItemCache) Get(ctx context.Context, id string) (item *domain.Item, ok bool, err error) {
	data, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get item: %w", err)
	}

	var it domain.Item
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, false, fmt.Errorf("unmarshal item: %w", err)
	}
	return &it, true, nil
}

// Generation returns the write generation of id, 0 if none was recorded.
func (c *ItemCache) Generation(ctx context.Context, id string) (int64, error) {
	gen, err := c.client.Get(ctx, genPrefix+id).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

// SetIfGeneration caches item only while its write generation still equals
// gen. It reports whether the item was cached. A write that lands between a
// reader's Generation call and this one leaves the cache empty.
func (c *ItemCache) SetIfGeneration(ctx context.Context, item *domain.Item, gen int64) (bool, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return false, fmt.Errorf("marshal item: %w", err)
	}

	genKey := genPrefix + item.ID
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyPrefix+item.ID, data, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("redis set item: %w", err)
	}
}

// Invalidate bumps the write generation of id and evicts its entry in one
// transaction. The generation outlives the entry by one TTL.
func (c *ItemCache) Invalidate(ctx context.Context, id string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genPrefix+id)
		pipe.Expire(ctx, genPrefix+id, 2*c.ttl)
		pipe.Del(ctx, keyPrefix+id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate item: %w", err)
	}
	return nil
}
