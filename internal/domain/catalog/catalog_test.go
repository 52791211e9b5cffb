package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductDecrementStock(t *testing.T) {
	t.Run("Regular", func(t *testing.T) {
		p, err := NewProduct("Delus Trucker", "", 49.99, "hat.jpg", "Clothing", 25)
		require.NoError(t, err)

		removed, err := p.DecrementStock(5)
		require.NoError(t, err)
		assert.Equal(t, 5, removed)
		assert.Equal(t, 20, p.Stock)
	})

	t.Run("FloorsAtZero", func(t *testing.T) {
		p := &Product{Stock: 20}
		removed, err := p.DecrementStock(25)
		require.NoError(t, err)
		assert.Equal(t, 20, removed)
		assert.Equal(t, 0, p.Stock)
	})

	t.Run("RejectsNonPositive", func(t *testing.T) {
		p := &Product{Stock: 3}
		_, err := p.DecrementStock(0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Equal(t, 3, p.Stock)
	})
}

func TestNewProductRejectsNegativeStock(t *testing.T) {
	_, err := NewProduct("x", "", 1, "", "", -1)
	assert.ErrorIs(t, err, ErrInvalidStock)
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		price float64
		want  int64
	}{
		{49.99, 4999},
		{0.1, 10},
		{19.995, 2000},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MinorUnits(tt.price), "price %v", tt.price)
	}
}
