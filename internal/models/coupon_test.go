package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCouponValidity(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	before := now.Add(-24 * time.Hour)
	after := now.Add(24 * time.Hour)

	t.Run("inactive", func(t *testing.T) {
		c := Coupon{Type: CouponTypePercent, Value: 10, IsActive: false}
		assert.False(t, c.IsValid(1000, now))
	})

	t.Run("window", func(t *testing.T) {
		c := Coupon{Type: CouponTypePercent, Value: 10, IsActive: true, StartAt: &before, EndAt: &after}
		assert.True(t, c.IsValid(1000, now))

		c.StartAt = &after
		assert.False(t, c.IsValid(1000, now), "not yet started")

		c.StartAt = &before
		c.EndAt = &before
		assert.False(t, c.IsValid(1000, now), "expired")
	})

	t.Run("minimum subtotal", func(t *testing.T) {
		c := Coupon{Type: CouponTypeFixed, Value: 100, MinSubtotal: 500, IsActive: true}
		assert.False(t, c.IsValid(499, now))
		assert.True(t, c.IsValid(500, now))
	})

	t.Run("usage cap", func(t *testing.T) {
		c := Coupon{Type: CouponTypeFixed, Value: 100, MaxUses: 3, UsedCount: 3, IsActive: true}
		assert.False(t, c.IsValid(1000, now))

		c.UsedCount = 2
		assert.True(t, c.IsValid(1000, now))

		// Zero MaxUses means unlimited.
		c = Coupon{Type: CouponTypeFixed, Value: 100, UsedCount: 9999, IsActive: true}
		assert.True(t, c.IsValid(1000, now))
	})
}

func TestCouponDiscountAmount(t *testing.T) {
	percent := Coupon{Type: CouponTypePercent, Value: 10}
	assert.Equal(t, 100.0, percent.DiscountAmount(1000))

	fixed := Coupon{Type: CouponTypeFixed, Value: 150}
	assert.Equal(t, 150.0, fixed.DiscountAmount(1000))

	// A fixed discount never exceeds the subtotal.
	assert.Equal(t, 90.0, fixed.DiscountAmount(90))
}
