package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order status values. Shipped, canceled and canceled_damaged are terminal.
const (
	OrderStatusPending         = "pending"
	OrderStatusPaid            = "paid"
	OrderStatusShipped         = "shipped"
	OrderStatusCanceled        = "canceled"
	OrderStatusCanceledDamaged = "canceled_damaged"
)

// Payment status values.
const (
	PaymentStatusInit      = "init"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusCanceled  = "canceled"
)

// Payment methods.
const (
	PaymentMethodPromptPay = "promptpay"
	PaymentMethodStripe    = "stripe"
	PaymentMethodTransfer  = "transfer"
)

// Order is one checkout transaction. It exclusively owns its items, payments
// and shipment.
type Order struct {
	BaseModel
	UserID        *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Seq           int64      `gorm:"index" json:"seq"`
	OrderNumber   string     `gorm:"uniqueIndex" json:"order_number"`
	Status        string     `gorm:"default:pending" json:"status"`
	PaymentMethod string     `json:"payment_method"`
	Subtotal      float64    `json:"subtotal"`
	ShippingFee   float64    `json:"shipping_fee"`
	Discount      float64    `json:"discount"`
	GrandTotal    float64    `json:"grand_total"`
	Currency      string     `gorm:"default:THB" json:"currency"`

	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	DeliveryAddress string `json:"delivery_address"`
	DeliveryCountry string `json:"delivery_country"`

	Items    []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments []Payment   `gorm:"constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	Shipment *Shipment   `gorm:"constraint:OnDelete:CASCADE" json:"shipment,omitempty"`
}

// BeforeCreate assigns the UUID and a per-order sequence number used for
// tracking-number fallbacks.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if err := o.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if o.Seq == 0 {
		var count int64
		if err := tx.Model(&Order{}).Count(&count).Error; err != nil {
			return err
		}
		o.Seq = count + 1
	}
	return nil
}

// UpdateTotals recomputes subtotal and grand total from the loaded items.
// Grand total = subtotal + shipping fee - discount.
func (o *Order) UpdateTotals() {
	var subtotal float64
	for _, item := range o.Items {
		subtotal += item.TotalPrice
	}
	o.Subtotal = subtotal
	o.GrandTotal = subtotal + o.ShippingFee - o.Discount
}

// LatestPayment returns the most recent payment attempt, which is the
// authoritative one. Payments are an append-only log.
func (o *Order) LatestPayment() *Payment {
	if len(o.Payments) == 0 {
		return nil
	}
	return &o.Payments[len(o.Payments)-1]
}

// IsCanceled reports whether the order already reached a canceled state.
func (o *Order) IsCanceled() bool {
	return o.Status == OrderStatusCanceled || o.Status == OrderStatusCanceledDamaged
}

// OrderItem is an immutable snapshot of a Variant at order time, so historical
// orders stay display-stable when catalog data changes.
type OrderItem struct {
	BaseModel
	OrderID       uuid.UUID         `gorm:"type:uuid;index" json:"order_id"`
	VariantID     uuid.UUID         `gorm:"type:uuid;index" json:"variant_id"`
	Variant       *Variant          `json:"variant,omitempty"`
	TitleSnapshot string            `json:"title_snapshot"`
	AttrsSnapshot VariantAttributes `gorm:"type:jsonb;serializer:json" json:"attrs_snapshot"`
	Qty           int               `gorm:"default:1" json:"qty"`
	UnitPrice     float64           `json:"unit_price"`
	TotalPrice    float64           `json:"total_price"`
}

// AfterCreate decrements the owning variant's stock in the same transaction
// as the order line insert. Every code path that persists an OrderItem goes
// through this hook, keeping the stock ledger in one place. There is no
// floor check; oversold stock goes negative.
func (i *OrderItem) AfterCreate(tx *gorm.DB) error {
	if i.Qty == 0 {
		return nil
	}
	return tx.Model(&Variant{}).
		Where("id = ?", i.VariantID).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", i.Qty)).Error
}

// AfterDelete returns the quantity to the variant's stock.
func (i *OrderItem) AfterDelete(tx *gorm.DB) error {
	if i.Qty == 0 {
		return nil
	}
	return tx.Model(&Variant{}).
		Where("id = ?", i.VariantID).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty + ?", i.Qty)).Error
}

// Payment is one payment attempt against an order.
type Payment struct {
	BaseModel
	OrderID uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	Method  string     `json:"method"`
	Ref     string     `json:"ref"`
	Amount  float64    `json:"amount"`
	Status  string     `gorm:"default:init" json:"status"`
	PaidAt  *time.Time `json:"paid_at"`
	SlipURL string     `json:"slip_url"`
}

// Shipment is created lazily on the first "mark shipped" action. At most one
// exists per order.
type Shipment struct {
	BaseModel
	OrderID    uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"order_id"`
	Carrier    string     `json:"carrier"`
	TrackingNo string     `json:"tracking_no"`
	Status     string     `json:"status"`
	ShippedAt  *time.Time `json:"shipped_at"`
	ReceivedAt *time.Time `json:"received_at"`
}
