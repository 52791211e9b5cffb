package cart

import (
	"errors"
	"testing"

	"github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hat(stock int) *catalog.Product {
	return &catalog.Product{ID: 1, Name: "Delus Trucker", Price: 49.99, ImageURL: "hat.jpg", Stock: stock}
}

func TestCartAdd(t *testing.T) {
	t.Run("EmptyCart", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Add(hat(10), 3))
		require.Equal(t, 1, c.Len())
		assert.Equal(t, 3, c.Entries[0].Quantity)
		assert.Equal(t, "Delus Trucker", c.Entries[0].Name)
	})

	t.Run("AccumulatesWithinStock", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Add(hat(10), 4))
		require.NoError(t, c.Add(hat(10), 6))
		require.Equal(t, 1, c.Len())
		assert.Equal(t, 10, c.Quantity(1))
	})

	t.Run("ExceedsStockLeavesCartUnchanged", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Add(hat(10), 7))

		err := c.Add(hat(10), 5)
		require.ErrorIs(t, err, ErrInsufficientStock)

		var stockErr *InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, 3, stockErr.Remaining)
		assert.Equal(t, 7, c.Quantity(1))
	})

	t.Run("RemainingFlooredAtZero", func(t *testing.T) {
		c := New(Entry{ProductID: 1, Quantity: 12})
		err := c.Add(hat(10), 1)

		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 0, stockErr.Remaining)
	})

	t.Run("RefreshesSnapshot", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Add(hat(10), 1))
		changed := hat(10)
		changed.Price = 39.99
		require.NoError(t, c.Add(changed, 1))
		assert.Equal(t, 39.99, c.Entries[0].Price)
	})

	t.Run("InvalidQuantity", func(t *testing.T) {
		c := New()
		assert.ErrorIs(t, c.Add(hat(10), 0), ErrInvalidQuantity)
		assert.True(t, c.IsEmpty())
	})
}

func TestCartRemove(t *testing.T) {
	c := New(
		Entry{ProductID: 1, Quantity: 1},
		Entry{ProductID: 2, Quantity: 2},
	)

	c.Remove(99)
	assert.Equal(t, 2, c.Len())

	c.Remove(1)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, int64(2), c.Entries[0].ProductID)
}

func TestCartTotal(t *testing.T) {
	c := New(
		Entry{ProductID: 1, Price: 10, Quantity: 2},
		Entry{ProductID: 2, Price: 2.5, Quantity: 4},
	)
	assert.InDelta(t, 30.0, c.Total(), 1e-9)

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.Total())
}
