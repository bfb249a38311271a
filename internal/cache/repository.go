package cache

import (
	"context"
	"log/slog"

	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
	"github.com/saikat7890/Lost-and-Found-System/internal/repository"
)

// CachedRepository is a read-through cache in front of an item repository.
// Only GetByID is cached; writes evict the affected id and bump its
// generation, so a read that raced a write never caches the older copy.
// Cache failures are logged and fall through to the underlying repository.
type CachedRepository struct {
	next   repository.ItemRepository
	cache  *ItemCache
	logger *slog.Logger
}

var _ repository.ItemRepository = (*CachedRepository)(nil)

// NewCachedRepository wraps next with cache.
func NewCachedRepository(next repository.ItemRepository, cache *ItemCache, logger *slog.Logger) *CachedRepository {
	return &CachedRepository{next: next, cache: cache, logger: logger}
}

// Create inserts through to the underlying repository.
func (r *CachedRepository) Create(ctx context.Context, item *domain.Item) error {
	return r.next.Create(ctx, item)
}

// GetByID serves from the cache and fills it on a miss.
func (r *CachedRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	item, ok, err := r.cache.Get(ctx, id)
	if err != nil {
		r.logger.WarnContext(ctx, "item cache read failed",
			slog.String("item_id", id),
			slog.String("error", err.Error()),
		)
	}
	if ok {
		return item, nil
	}

	gen, genErr := r.cache.Generation(ctx, id)

	item, err = r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		return item, nil
	}
	if _, err := r.cache.SetIfGeneration(ctx, item, gen); err != nil {
		r.logger.WarnContext(ctx, "item cache write failed",
			slog.String("item_id", id),
			slog.String("error", err.Error()),
		)
	}
	return item, nil
}

// List is never cached.
func (r *CachedRepository) List(ctx context.Context, opts repository.ListOptions) ([]domain.Item, int, error) {
	return r.next.List(ctx, opts)
}

// Update persists through and evicts the item.
func (r *CachedRepository) Update(ctx context.Context, item *domain.Item) error {
	if err := r.next.Update(ctx, item); err != nil {
		return err
	}
	r.evict(ctx, item.ID)
	return nil
}

// Delete removes through and evicts the item.
func (r *CachedRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

func (r *CachedRepository) evict(ctx context.Context, id string) {
	if err := r.cache.Invalidate(ctx, id); err != nil {
		r.logger.WarnContext(ctx, "item cache eviction failed",
			slog.String("item_id", id),
			slog.String("error", err.Error()),
		)
	}
}
