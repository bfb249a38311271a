package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
	"github.com/saikat7890/Lost-and-Found-System/internal/repository/memory"
	apperrors "github.com/saikat7890/Lost-and-Found-System/pkg/errors"
)

// racingRepo runs onGet after reading from the backing store and before
// returning, standing in for a write that lands during a cache miss.
type racingRepo struct {
	*memory.ItemRepository
	onGet func()
}

func (r *racingRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	item, err := r.ItemRepository.GetByID(ctx, id)
	if hook := r.onGet; hook != nil {
		r.onGet = nil
		hook()
	}
	return item, err
}

func setupCachedRepo(t *testing.T) (*CachedRepository, *memory.ItemRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	backing := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCachedRepository(backing, NewItemCache(client, time.Minute), logger), backing, mr
}

func TestCachedRepository_GetByID_FillsCache(t *testing.T) {
	repo, _, mr := setupCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleItem()))
	assert.False(t, mr.Exists("item:item-001"))

	got, err := repo.GetByID(ctx, "item-001")
	require.NoError(t, err)
	assert.Equal(t, "Black Wallet", got.Title)
	assert.True(t, mr.Exists("item:item-001"))
}

func TestCachedRepository_GetByID_ServesFromCache(t *testing.T) {
	repo, backing, _ := setupCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleItem()))
	_, err := repo.GetByID(ctx, "item-001")
	require.NoError(t, err)

	// Removed behind the cache's back: the cached copy still answers.
	require.NoError(t, backing.Delete(ctx, "item-001"))

	got, err := repo.GetByID(ctx, "item-001")
	require.NoError(t, err)
	assert.Equal(t, "item-001", got.ID)
}

func TestCachedRepository_GetByID_NotFoundIsNotCached(t *testing.T) {
	repo, _, mr := setupCachedRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.False(t, mr.Exists("item:missing"))
}

func TestCachedRepository_UpdateEvicts(t *testing.T) {
	repo, _, mr := setupCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleItem()))

	item, err := repo.GetByID(ctx, "item-001")
	require.NoError(t, err)

	item.Title = "Brown Wallet"
	require.NoError(t, repo.Update(ctx, item))
	assert.False(t, mr.Exists("item:item-001"))

	got, err := repo.GetByID(ctx, "item-001")
	require.NoError(t, err)
	assert.Equal(t, "Brown Wallet", got.Title)
}

func TestCachedRepository_GetByID_RacingUpdateIsNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	backing := &racingRepo{ItemRepository: memory.New()}
	repo := NewCachedRepository(backing, NewItemCache(client, time.Minute), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleItem()))

	backing.onGet = func() {
		updated := sampleItem()
		updated.Title = "Brown Wallet"
		require.NoError(t, repo.Update(ctx, updated))
	}

	stale, err := repo.GetByID(ctx, "item-001")
	require.NoError(t, err)
	assert.Equal(t, "Black Wallet", stale.Title)
	assert.False(t, mr.Exists("item:item-001"))

	got, err := repo.GetByID(ctx, "item-001")
	require.NoError(t, err)
	assert.Equal(t, "Brown Wallet", got.Title)
	assert.True(t, mr.Exists("item:item-001"))
}

func TestCachedRepository_DeleteEvicts(t *testing.T) {
	repo, _, mr := setupCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleItem()))
	_, err := repo.GetByID(ctx, "item-001")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "item-001"))
	assert.False(t, mr.Exists("item:item-001"))

	_, err = repo.GetByID(ctx, "item-001")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestCachedRepository_FallsThroughWhenRedisDown(t *testing.T) {
	repo, _, mr := setupCachedRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleItem()))
	mr.Close()

	got, err := repo.GetByID(ctx, "item-001")
	require.NoError(t, err)
	assert.Equal(t, "Black Wallet", got.Title)

	require.NoError(t, repo.Delete(ctx, "item-001"))
}
