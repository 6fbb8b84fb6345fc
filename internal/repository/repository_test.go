package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/kirana_cart/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepository runs the behaviour every CartRepository driver must share.
func testRepository(t *testing.T, newRepo func(t *testing.T) CartRepository) {
	t.Run("get missing cart", func(t *testing.T) {
		repo := newRepo(t)

		cart, err := repo.GetCart(context.Background(), "nonexistent")

		assert.ErrorIs(t, err, ErrCartNotFound)
		assert.Nil(t, cart)
	})

	t.Run("save creates and bumps version", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		cart := domain.NewCart("user123", time.Now().UTC().Truncate(time.Millisecond))
		require.NoError(t, repo.Save(ctx, cart))
		assert.Equal(t, int64(1), cart.Version)
		assert.NotEmpty(t, cart.ID)

		cart.Merge(domain.ProductRef{ID: "p1", Name: "Milk", Price: domain.NewPrice(27.5), ShopOwnerID: "o1"}, 2, time.Now())
		require.NoError(t, repo.Save(ctx, cart))
		assert.Equal(t, int64(2), cart.Version)

		stored, err := repo.GetCart(ctx, "user123")
		require.NoError(t, err)
		assert.Equal(t, "user123", stored.UserID)
		require.Len(t, stored.Items, 1)
		assert.Equal(t, "p1", stored.Items[0].ProductID)
		assert.Equal(t, 2, stored.Items[0].Quantity)
		assert.True(t, stored.Items[0].Price.Equal(domain.NewPrice(27.5)))
		assert.Equal(t, "o1", stored.Items[0].ShopOwnerID)
	})

	t.Run("save keeps empty items as empty array", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.Save(ctx, &domain.Cart{UserID: "empty", UpdatedAt: time.Now()}))

		stored, err := repo.GetCart(ctx, "empty")
		require.NoError(t, err)
		assert.NotNil(t, stored.Items)
		assert.Empty(t, stored.Items)
	})

	t.Run("save if version", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		cart := domain.NewCart("versioned", time.Now())
		require.NoError(t, repo.SaveIfVersion(ctx, cart, 0))
		assert.Equal(t, int64(1), cart.Version)

		stale := cart.Clone()
		require.NoError(t, repo.SaveIfVersion(ctx, cart, 1))
		assert.Equal(t, int64(2), cart.Version)

		err := repo.SaveIfVersion(ctx, stale, 1)
		assert.ErrorIs(t, err, ErrVersionConflict)

		fresh := domain.NewCart("versioned", time.Now())
		err = repo.SaveIfVersion(ctx, fresh, 0)
		assert.ErrorIs(t, err, ErrVersionConflict)
	})

	t.Run("returned carts are copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		cart := domain.NewCart("copies", time.Now())
		cart.Merge(domain.ProductRef{ID: "p1"}, 1, time.Now())
		require.NoError(t, repo.Save(ctx, cart))

		first, err := repo.GetCart(ctx, "copies")
		require.NoError(t, err)
		first.Merge(domain.ProductRef{ID: "p1"}, 5, time.Now())

		second, err := repo.GetCart(ctx, "copies")
		require.NoError(t, err)
		assert.Equal(t, 1, second.Quantity("p1"))
	})
}

func TestMemoryRepository(t *testing.T) {
	testRepository(t, func(t *testing.T) CartRepository {
		return NewMemoryRepository()
	})
}

func TestMemoryRepository_ContextCancellation(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetCart(ctx, "user123")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Save(ctx, domain.NewCart("user123", time.Now())), context.Canceled)
	assert.Equal(t, 0, repo.Len())
}
