package models

import "time"

// Coupon discount types.
const (
	CouponTypePercent = "percent"
	CouponTypeFixed   = "fixed"
)

// Coupon is a discount code. Validity is computed at use time, never cached,
// and the usage counter is incremented by the caller only on successful order
// creation.
type Coupon struct {
	BaseModel
	Code        string     `gorm:"uniqueIndex" json:"code"`
	Type        string     `json:"type"`
	Value       float64    `json:"value"`
	MinSubtotal float64    `json:"min_subtotal"`
	MaxUses     int        `json:"max_uses"`
	UsedCount   int        `json:"used_count"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
}

// IsValid reports whether the coupon may be applied to the given subtotal at
// the given time. Both window bounds, the minimum subtotal and the usage cap
// are optional.
func (c *Coupon) IsValid(subtotal float64, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.StartAt != nil && now.Before(*c.StartAt) {
		return false
	}
	if c.EndAt != nil && now.After(*c.EndAt) {
		return false
	}
	if c.MinSubtotal > 0 && subtotal < c.MinSubtotal {
		return false
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return false
	}
	return true
}

// DiscountAmount computes the discount for the subtotal. Fixed discounts are
// capped at the subtotal so the discount can never exceed it.
func (c *Coupon) DiscountAmount(subtotal float64) float64 {
	if c.Type == CouponTypePercent {
		return subtotal * (c.Value / 100)
	}
	if c.Value > subtotal {
		return subtotal
	}
	return c.Value
}
