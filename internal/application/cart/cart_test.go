package cart

import (
	"context"
	"testing"

	domain "github.com/delus-studio/storefront/internal/domain/cart"
	"github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/delus-studio/storefront/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProducts(t *testing.T) catalog.ProductRepository {
	t.Helper()
	repo := memory.NewProductRepository()
	require.NoError(t, repo.Create(context.Background(), &catalog.Product{
		ID: 1, Name: "Delus Trucker Hat", Price: 49.99, ImageURL: "images/collection/item1.jpg", Stock: 5,
	}))
	require.NoError(t, repo.Create(context.Background(), &catalog.Product{
		ID: 2, Name: "Delus Trucker II", Price: 49.99, ImageURL: "images/collection/item2.jpg", Stock: 5,
	}))
	return repo
}

func TestAddToCart(t *testing.T) {
	ctx := context.Background()
	overrides := map[int64]string{1: "images/curated/hat-front.jpg"}

	t.Run("Regular", func(t *testing.T) {
		uc := NewAddToCartUseCase(newProducts(t), overrides, nil)
		c := domain.New()

		res, err := uc.Execute(ctx, AddToCartInput{Cart: c, ProductID: 1, Quantity: 2})
		require.NoError(t, err)
		assert.Equal(t, 1, res.CartSize)
		assert.Equal(t, "images/curated/hat-front.jpg", res.ImageURL)

		res, err = uc.Execute(ctx, AddToCartInput{Cart: c, ProductID: 2, Quantity: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, res.CartSize)
		assert.Equal(t, "images/collection/item2.jpg", res.ImageURL)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		uc := NewAddToCartUseCase(newProducts(t), nil, nil)
		c := domain.New()

		_, err := uc.Execute(ctx, AddToCartInput{Cart: c, ProductID: 1, Quantity: 4})
		require.NoError(t, err)

		_, err = uc.Execute(ctx, AddToCartInput{Cart: c, ProductID: 1, Quantity: 2})
		var stockErr *domain.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, 1, stockErr.Remaining)
		assert.Equal(t, 4, c.Quantity(1))
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		uc := NewAddToCartUseCase(newProducts(t), nil, nil)
		_, err := uc.Execute(ctx, AddToCartInput{Cart: domain.New(), ProductID: 9, Quantity: 1})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("InvalidQuantity", func(t *testing.T) {
		uc := NewAddToCartUseCase(newProducts(t), nil, nil)
		_, err := uc.Execute(ctx, AddToCartInput{Cart: domain.New(), ProductID: 1, Quantity: -1})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestViewAndRemove(t *testing.T) {
	c := domain.New(
		domain.Entry{ProductID: 1, Price: 49.99, Quantity: 2},
		domain.Entry{ProductID: 2, Price: 10, Quantity: 1},
	)

	Remove(c, 42)
	assert.Equal(t, 2, c.Len())

	v := ViewOf(c)
	require.Len(t, v.Items, 2)
	assert.InDelta(t, 99.98, v.Items[0].Subtotal, 1e-9)
	assert.InDelta(t, 109.98, v.Total, 1e-9)

	Remove(c, 1)
	v = ViewOf(c)
	require.Len(t, v.Items, 1)
	assert.InDelta(t, 10.0, v.Total, 1e-9)

	assert.Empty(t, ViewOf(nil).Items)
}
