//go:build !integration

package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		price    string
		discount string
		want     string
	}{
		{"10.00", "0", "10.00"},
		{"10.00", "100", "0.00"},
		{"8.90", "10", "8.01"},
		{"3.33", "33.33", "2.22"},
	}

	for _, tt := range tests {
		p := Product{
			Price:              decimal.RequireFromString(tt.price),
			DiscountPercentage: decimal.NewNullDecimal(decimal.RequireFromString(tt.discount)),
		}
		p.ApplyDiscount()

		require.True(t, p.PromotionalPrice.Valid)
		assert.Equal(t, tt.want, p.PromotionalPrice.Decimal.StringFixed(2), "price %s discount %s", tt.price, tt.discount)
		assert.True(t, p.EffectivePrice().Equal(p.PromotionalPrice.Decimal))
	}

	p := Product{Price: decimal.NewFromInt(5), PromotionalPrice: decimal.NewNullDecimal(decimal.NewFromInt(1))}
	p.ApplyDiscount()
	assert.False(t, p.PromotionalPrice.Valid)
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(5)))
}

func TestCartRecalculate(t *testing.T) {
	vendorID := uuid.New()
	apple := Product{Price: decimal.RequireFromString("2.50"), HortifruitID: vendorID}
	pear := Product{
		HortifruitID:     vendorID,
		Price:            decimal.RequireFromString("4.00"),
		PromotionalPrice: decimal.NewNullDecimal(decimal.RequireFromString("3.00")),
	}

	cart := Cart{
		Items: []CartItem{
			{ID: uuid.New(), Quantity: 2, Product: &apple},
			{ID: uuid.New(), Quantity: 3, Product: &pear},
			{ID: uuid.New(), Quantity: 1, UnitPrice: decimal.RequireFromString("1.25")},
		},
	}
	cart.Recalculate()

	assert.Equal(t, "15.25", cart.Subtotal.StringFixed(2))
	assert.True(t, cart.Total.Equal(cart.Subtotal))
	assert.Equal(t, "3.00", cart.Items[1].UnitPrice.StringFixed(2))
	require.NotNil(t, cart.HortifruitID)
	assert.Equal(t, vendorID, *cart.HortifruitID)

	item, ok := cart.Item(cart.Items[0].ID)
	assert.True(t, ok)
	assert.Equal(t, 2, item.Quantity)

	_, ok = cart.Item(uuid.New())
	assert.False(t, ok)

	cart.Items = nil
	cart.Recalculate()
	assert.True(t, cart.Subtotal.IsZero())
	assert.Nil(t, cart.HortifruitID)
}

func TestNextRating(t *testing.T) {
	avg, n := NextRating(0, 0, 3)
	avg, n = NextRating(avg, n, 5)

	assert.InDelta(t, 4.0, avg, 1e-9)
	assert.Equal(t, 2, n)
}
