package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bettashop/internal/models"
)

// Cancellation modes.
const (
	CancelActionRestock = "restock"
	CancelActionDamaged = "damaged"
)

var (
	// ErrEmptyCart rejects checkout of an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidCancelAction rejects unknown cancellation actions.
	ErrInvalidCancelAction = errors.New("invalid cancellation action")
	// ErrPaymentNotReady means no remote transaction exists for the order yet.
	ErrPaymentNotReady = errors.New("payment not ready")
	// ErrGatewayFailure marks remote provider errors so callers can report a
	// generic failure while the detail stays in the logs.
	ErrGatewayFailure = errors.New("payment gateway error")
)

// OrderService orchestrates the order lifecycle: checkout, payment
// confirmation, shipping and cancellation. Every state transition runs in a
// single database transaction scoped to one request.
type OrderService struct {
	db       *gorm.DB
	gateway  PaymentGateway
	settings *SettingsService
	telegram *TelegramService
}

// NewOrderService constructs an OrderService.
func NewOrderService(db *gorm.DB, gateway PaymentGateway, settings *SettingsService, telegram *TelegramService) *OrderService {
	return &OrderService{db: db, gateway: gateway, settings: settings, telegram: telegram}
}

// CheckoutInput carries the checkout form fields.
type CheckoutInput struct {
	UserID        *uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	Country       string
	CouponCode    string
	PaymentMethod string
}

// Checkout converts a non-empty cart into a pending order with snapshot
// items, a shipping quote, an optional coupon discount and an initial payment
// row. For card payments a remote transaction is opened inside the same
// database transaction; a provider failure rolls back the entire order.
// Cart items are cleared in the same commit.
//
// An invalid or expired coupon does not block checkout; it is reported in the
// returned warnings and simply not applied.
func (s *OrderService) Checkout(ctx context.Context, cart *models.Cart, in CheckoutInput) (*models.Order, []string, error) {
	if len(cart.Items) == 0 {
		return nil, nil, ErrEmptyCart
	}

	var warnings []string
	now := time.Now().UTC()
	subtotal := cart.Total()

	country := strings.ToUpper(in.Country)
	if country == "" {
		country = "TH"
	}

	method := in.PaymentMethod
	if method == "" {
		method = models.PaymentMethodPromptPay
	}

	quote := s.settings.ShippingCalculator().QuoteFor(country, 0)

	currency := "THB"
	if country != "TH" {
		currency = "USD"
	}

	var coupon *models.Coupon
	var discount float64
	if in.CouponCode != "" {
		var cpn models.Coupon
		err := s.db.WithContext(ctx).First(&cpn, "code = ?", in.CouponCode).Error
		switch {
		case err == nil && cpn.IsValid(subtotal, now):
			coupon = &cpn
			discount = cpn.DiscountAmount(subtotal)
		case err == nil || errors.Is(err, gorm.ErrRecordNotFound):
			warnings = append(warnings, "coupon is invalid or expired")
		default:
			return nil, nil, err
		}
	}

	order := &models.Order{
		UserID:          in.UserID,
		OrderNumber:     generateOrderNumber(now),
		Status:          models.OrderStatusPending,
		PaymentMethod:   method,
		Subtotal:        subtotal,
		ShippingFee:     quote.Fee,
		Discount:        discount,
		Currency:        currency,
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		DeliveryAddress: in.Address,
		DeliveryCountry: country,
	}

	for _, item := range cart.Items {
		orderItem := models.OrderItem{
			VariantID:  item.VariantID,
			Qty:        item.Qty,
			UnitPrice:  item.PriceAt,
			TotalPrice: item.TotalPrice(),
		}
		if item.Variant != nil {
			orderItem.AttrsSnapshot = item.Variant.Attributes
			if item.Variant.Product != nil {
				orderItem.TitleSnapshot = item.Variant.Product.LocalizedTitle("th")
			}
		}
		order.Items = append(order.Items, orderItem)
	}

	order.UpdateTotals()

	payment := models.Payment{
		Method: method,
		Amount: order.GrandTotal,
		Status: models.PaymentStatusInit,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Creating the order inserts its items, which decrement variant
		// stock through the OrderItem hooks.
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		payment.OrderID = order.ID
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if method == models.PaymentMethodStripe {
			intent, err := s.gateway.CreateIntent(ctx, toMinorUnits(order.GrandTotal), order.Currency, map[string]string{
				"order_no": order.OrderNumber,
			})
			if err != nil {
				return errors.Join(ErrGatewayFailure, err)
			}

			payment.Ref = intent.ID
			if intent.Status != "" {
				payment.Status = intent.Status
			}
			if intent.Amount > 0 {
				payment.Amount = round2(float64(intent.Amount) / 100)
			}
			if err := tx.Save(&payment).Error; err != nil {
				return err
			}
		}

		if coupon != nil {
			if err := tx.Model(&models.Coupon{}).
				Where("id = ?", coupon.ID).
				UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
				return err
			}
		}

		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, warnings, err
	}

	order.Payments = []models.Payment{payment}

	if s.telegram != nil {
		go func(o models.Order) {
			if err := s.telegram.NotifyNewOrder(&o); err != nil {
				log.Printf("[Order] Telegram notification failed for %s: %v", o.OrderNumber, err)
			}
		}(*order)
	}

	return order, warnings, nil
}

// ConfirmManualPayment is the admin action for transfer payments: the latest
// payment (created if absent) becomes confirmed with a paid timestamp and the
// order becomes paid. Stock was already decremented at checkout.
func (s *OrderService) ConfirmManualPayment(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Payments").First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment := order.LatestPayment()
		if payment == nil {
			created := models.Payment{
				OrderID: order.ID,
				Method:  models.PaymentMethodTransfer,
				Amount:  order.GrandTotal,
				Status:  models.PaymentStatusConfirmed,
				PaidAt:  &now,
			}
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
			order.Payments = append(order.Payments, created)
		} else {
			payment.Status = models.PaymentStatusConfirmed
			payment.PaidAt = &now
			if err := tx.Save(payment).Error; err != nil {
				return err
			}
		}

		order.Status = models.OrderStatusPaid
		return tx.Model(&order).Update("status", models.OrderStatusPaid).Error
	})
	if err != nil {
		return nil, err
	}

	if s.telegram != nil {
		go func(o models.Order) {
			if err := s.telegram.NotifyPaymentConfirmed(&o); err != nil {
				log.Printf("[Order] Telegram notification failed for %s: %v", o.OrderNumber, err)
			}
		}(order)
	}

	return &order, nil
}

// ConfirmStripePayment re-fetches the remote transaction and mirrors its
// status onto the latest payment. A succeeded intent marks the order paid and
// reconciles the amount from the provider-reported value.
func (s *OrderService) ConfirmStripePayment(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Payments").First(&order, "order_number = ?", orderNumber).Error; err != nil {
		return nil, err
	}

	payment := order.LatestPayment()
	if payment == nil || payment.Method != models.PaymentMethodStripe || payment.Ref == "" {
		return nil, ErrPaymentNotReady
	}

	intent, err := s.gateway.RetrieveIntent(ctx, payment.Ref)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment.Status = intent.Status
		if intent.Status == models.PaymentStatusSucceeded {
			now := time.Now().UTC()
			payment.PaidAt = &now
			amount := intent.AmountReceived
			if amount == 0 {
				amount = intent.Amount
			}
			if amount > 0 {
				payment.Amount = round2(float64(amount) / 100)
			}
			order.Status = models.OrderStatusPaid
			if err := tx.Model(&order).Update("status", models.OrderStatusPaid).Error; err != nil {
				return err
			}
		}
		return tx.Save(payment).Error
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// Ship creates the shipment on first use (with carrier default and generated
// tracking number) or updates the existing one, and marks the order shipped.
func (s *OrderService) Ship(ctx context.Context, orderID uuid.UUID, carrier, trackingNo string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Shipment").First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.Shipment == nil {
			if carrier == "" {
				carrier = "Kerry Express"
			}
			if trackingNo == "" {
				trackingNo = fmt.Sprintf("KR%s-%05d", now.Format("20060102"), order.Seq)
			}
			shipment := models.Shipment{
				OrderID:    order.ID,
				Carrier:    carrier,
				TrackingNo: trackingNo,
				Status:     models.OrderStatusShipped,
				ShippedAt:  &now,
			}
			if err := tx.Create(&shipment).Error; err != nil {
				return err
			}
			order.Shipment = &shipment
		} else {
			if carrier != "" {
				order.Shipment.Carrier = carrier
			}
			if trackingNo != "" {
				order.Shipment.TrackingNo = trackingNo
			}
			order.Shipment.Status = models.OrderStatusShipped
			order.Shipment.ShippedAt = &now
			if err := tx.Save(order.Shipment).Error; err != nil {
				return err
			}
		}

		order.Status = models.OrderStatusShipped
		return tx.Model(&order).Update("status", models.OrderStatusShipped).Error
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// CancelResult reports the outcome of a cancellation.
type CancelResult struct {
	Order           *models.Order
	AlreadyCanceled bool
}

// Cancel moves the order to a canceled state. Canceling an already-canceled
// order is an informational no-op. The restock action returns item quantities
// to variant stock and reactivates deactivated products; the damaged action
// does not restock and only clamps negative stock back to zero.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, action string) (*CancelResult, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).
		Preload("Items.Variant").
		Preload("Payments").
		Preload("Shipment").
		First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}

	if order.IsCanceled() {
		return &CancelResult{Order: &order, AlreadyCanceled: true}, nil
	}

	if action != CancelActionRestock && action != CancelActionDamaged {
		return nil, ErrInvalidCancelAction
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if action == CancelActionRestock {
			for _, item := range order.Items {
				if item.Variant == nil {
					continue
				}
				if err := tx.Model(&models.Variant{}).
					Where("id = ?", item.VariantID).
					UpdateColumn("stock_qty", gorm.Expr("stock_qty + ?", item.Qty)).Error; err != nil {
					return err
				}
				if err := tx.Model(&models.Product{}).
					Where("id = ? AND status <> ?", item.Variant.ProductID, models.ProductStatusActive).
					Update("status", models.ProductStatusActive).Error; err != nil {
					return err
				}
			}
		} else {
			// Quantities stay deducted; only negative stock is clamped.
			for _, item := range order.Items {
				if item.Variant == nil {
					continue
				}
				if err := tx.Model(&models.Variant{}).
					Where("id = ? AND stock_qty < 0", item.VariantID).
					UpdateColumn("stock_qty", 0).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.Model(&models.Payment{}).
			Where("order_id = ?", order.ID).
			Updates(map[string]any{
				"status":  models.PaymentStatusCanceled,
				"paid_at": nil,
			}).Error; err != nil {
			return err
		}

		if order.Shipment != nil {
			if err := tx.Model(order.Shipment).
				Updates(map[string]any{
					"status":      models.OrderStatusCanceled,
					"shipped_at":  nil,
					"received_at": nil,
				}).Error; err != nil {
				return err
			}
		}

		status := models.OrderStatusCanceled
		if action == CancelActionDamaged {
			status = models.OrderStatusCanceledDamaged
		}
		order.Status = status
		return tx.Model(&order).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}

	return &CancelResult{Order: &order}, nil
}

// generateOrderNumber builds a human-readable order number: BT + UTC
// timestamp + 3-digit random suffix.
func generateOrderNumber(now time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(999))
	var suffix int64
	if err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("BT%s%03d", now.Format("20060102150405"), suffix)
}

// toMinorUnits converts a currency amount to minor units for the provider.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
