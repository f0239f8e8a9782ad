package models

import "github.com/google/uuid"

// Cart holds items for a browsing session. Anonymous carts are keyed by a
// session token cookie; logged-in carts by user id.
type Cart struct {
	BaseModel
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	SessionID string     `gorm:"index" json:"session_id"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// Total sums the line totals of all items.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.TotalPrice()
	}
	return total
}

// CartItem references a live Variant with the price captured at add time.
type CartItem struct {
	BaseModel
	CartID    uuid.UUID `gorm:"type:uuid;index" json:"cart_id"`
	VariantID uuid.UUID `gorm:"type:uuid" json:"variant_id"`
	Variant   *Variant  `json:"variant,omitempty"`
	Qty       int       `gorm:"default:1" json:"qty"`
	PriceAt   float64   `json:"price_at"`
}

// TotalPrice is the line total at the captured price.
func (i *CartItem) TotalPrice() float64 {
	return i.PriceAt * float64(i.Qty)
}
