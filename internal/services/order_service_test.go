package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/bettashop/internal/config"
	"github.com/example/bettashop/internal/database"
	"github.com/example/bettashop/internal/models"
)

type fakeGateway struct {
	createErr   error
	retrieveErr error
	intent      *PaymentIntent
	createCalls int
}

func (f *fakeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.intent != nil {
		return f.intent, nil
	}
	return &PaymentIntent{
		ID:       fmt.Sprintf("pi_test_%d", amountMinor),
		Status:   "requires_payment_method",
		Currency: currency,
		Amount:   amountMinor,
	}, nil
}

func (f *fakeGateway) RetrieveIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	if f.intent != nil {
		return f.intent, nil
	}
	return &PaymentIntent{ID: id, Status: "requires_payment_method"}, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestOrderService(db *gorm.DB, gateway PaymentGateway) *OrderService {
	cfg := &config.Config{
		ShippingDomesticBase:      150,
		ShippingInternationalBase: 650,
	}
	return NewOrderService(db, gateway, NewSettingsService(db, cfg), nil)
}

func createTestProduct(t *testing.T, db *gorm.DB, stock int, price float64) *models.Product {
	t.Helper()

	product := models.Product{
		SKU:      fmt.Sprintf("BT-TST-%d", time.Now().UnixNano()),
		TitleTH:  "ปลากัดทดสอบ",
		TitleEN:  "Test Betta",
		Category: "halfmoon",
		IsUnique: stock == 1,
		Status:   models.ProductStatusActive,
		Variants: []models.Variant{{
			Price:       price,
			StockQty:    stock,
			WeightGrams: 120,
			Attributes:  models.VariantAttributes{Tail: "halfmoon", Color: "red", Sex: "male"},
		}},
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func createTestCart(t *testing.T, db *gorm.DB, variant *models.Variant, qty int) *models.Cart {
	t.Helper()

	cart := models.Cart{SessionID: fmt.Sprintf("sess-%d", time.Now().UnixNano())}
	require.NoError(t, db.Create(&cart).Error)

	item := models.CartItem{
		CartID:    cart.ID,
		VariantID: variant.ID,
		Qty:       qty,
		PriceAt:   variant.Price,
	}
	require.NoError(t, db.Create(&item).Error)

	var loaded models.Cart
	require.NoError(t, db.Preload("Items.Variant.Product").First(&loaded, "id = ?", cart.ID).Error)
	return &loaded
}

func variantStock(t *testing.T, db *gorm.DB, variantID any) int {
	t.Helper()

	var v models.Variant
	require.NoError(t, db.First(&v, "id = ?", variantID).Error)
	return v.StockQty
}

func TestCheckoutTotals(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db, &fakeGateway{})

	product := createTestProduct(t, db, 1, 250)
	cart := createTestCart(t, db, product.PrimaryVariant(), 1)

	order, warnings, err := svc.Checkout(context.Background(), cart, CheckoutInput{
		CustomerName: "Somchai",
		Address:      "123 Sukhumvit Rd, Bangkok",
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.True(t, strings.HasPrefix(order.OrderNumber, "BT"), "order number = %s", order.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentMethodPromptPay, order.PaymentMethod)
	assert.Equal(t, "THB", order.Currency)
	assert.Equal(t, 250.0, order.Subtotal)
	assert.Equal(t, 150.0, order.ShippingFee)
	assert.Equal(t, 400.0, order.GrandTotal)

	require.Len(t, order.Payments, 1)
	assert.Equal(t, models.PaymentStatusInit, order.Payments[0].Status)
	assert.Equal(t, 400.0, order.Payments[0].Amount)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "ปลากัดทดสอบ", order.Items[0].TitleSnapshot)
	assert.Equal(t, "halfmoon", order.Items[0].AttrsSnapshot.Tail)

	// Stock decremented by the item hook, cart cleared in the same commit.
	assert.Equal(t, 0, variantStock(t, db, product.PrimaryVariant().ID))
	var remaining int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestCheckoutInternational(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db, &fakeGateway{})

	product := createTestProduct(t, db, 1, 250)
	cart := createTestCart(t, db, product.PrimaryVariant(), 1)

	order, _, err := svc.Checkout(context.Background(), cart, CheckoutInput{Country: "us"})
	require.NoError(t, err)

	assert.Equal(t, "US", order.DeliveryCountry)
	assert.Equal(t, "USD", order.Currency)
	assert.Equal(t, 650.0, order.ShippingFee)
	assert.Equal(t, 900.0, order.GrandTotal)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db, &fakeGateway{})

	_, _, err := svc.Checkout(context.Background(), &models.Cart{}, CheckoutInput{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutCoupon(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db, &fakeGateway{})

	coupon := models.Coupon{Code: "TENOFF", Type: models.CouponTypePercent, Value: 10, IsActive: true}
	require.NoError(t, db.Create(&coupon).Error)

	product := createTestProduct(t, db, 3, 500)
	cart := createTestCart(t, db, product.PrimaryVariant(), 2)

	order, warnings, err := svc.Checkout(context.Background(), cart, CheckoutInput{CouponCode: "TENOFF"})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, 1000.0, order.Subtotal)
	assert.Equal(t, 100.0, order.Discount)
	assert.Equal(t, 1050.0, order.GrandTotal)

	var reloaded models.Coupon
	require.NoError(t, db.First(&reloaded, "id = ?", coupon.ID).Error)
	assert.Equal(t, 1, reloaded.UsedCount)
}

func TestCheckoutInvalidCouponWarns(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db, &fakeGateway{})

	product := createTestProduct(t, db, 1, 250)
	cart := createTestCart(t, db, product.PrimaryVariant(), 1)

	order, warnings, err := svc.Checkout(context.Background(), cart, CheckoutInput{CouponCode: "NOPE"})
	require.NoError(t, err)

	assert.Contains(t, warnings, "coupon is invalid or expired")
	assert.Zero(t, order.Discount)
	assert.Equal(t, 400.0, order.GrandTotal)
}

func TestCheckoutStripeOpensIntent(t *testing.T) {
	db := setupTestDB(t)
	gateway := &fakeGateway{intent: &PaymentIntent{
		ID:     "pi_abc123",
		Status: "requires_payment_method",
		Amount: 40000,
	}}
	svc := newTestOrderService(db, gateway)

	product := createTestProduct(t, db, 1, 250)
	cart := createTestCart(t, db, product.PrimaryVariant(), 1)

	order, _, err := svc.Checkout(context.Background(), cart, CheckoutInput{PaymentMethod: models.PaymentMethodStripe})
	require.NoError(t, err)
	assert.Equal(t, 1, gateway.createCalls)

	require.Len(t, order.Payments, 1)
	assert.Equal(t, "pi_abc123", order.Payments[0].Ref)
	assert.Equal(t, "requires_payment_method", order.Payments[0].Status)
	assert.Equal(t, 400.0, order.Payments[0].Amount)
}

func TestCheckoutStripeFailureRollsBack(t *testing.T) {
	db := setupTestDB(t)
	gateway := &fakeGateway{createErr: errors.New("card network down")}
	svc := newTestOrderService(db, gateway)

	product := createTestProduct(t, db, 5, 250)
	cart := createTestCart(t, db, product.PrimaryVariant(), 2)

	_, _, err := svc.Checkout(context.Background(), cart, CheckoutInput{PaymentMethod: models.PaymentMethodStripe})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGatewayFailure)

	// The whole checkout rolled back: no order, stock untouched, cart intact.
	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
	assert.Equal(t, 5, variantStock(t, db, product.PrimaryVariant().ID))
	var items int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&items).Error)
	assert.Equal(t, int64(1), items)
}

func TestConfirmManualPayment(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db, &fakeGateway{})

	product := createTestProduct(t, db, 1, 250)
	cart := createTestCart(t, db, product.PrimaryVariant(), 1)

	order, _, err := svc.Checkout(context.Background(), cart, CheckoutInput{})
	require.NoError(t, err)

	confirmed, err := svc.ConfirmManualPayment(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, confirmed.Status)

	var payment models.Payment
	require.NoError(t, db.First(&payment, "order_id = ?", order.ID).Error)
	assert.Equal(t, models.PaymentStatusConfirmed, payment.Status)
	require.NotNil(t, payment.PaidAt)
}

func TestConfirmStripePayment(t *testing.T) {
	db := setupTestDB(t)
	gateway := &fakeGateway{intent: &PaymentIntent{
		ID:     "pi_abc123",
		Status: "requires_payment_method",
		Amount: 40000,
	}}
	svc := newTestOrderService(db, gateway)

	product := createTestProduct(t, db, 1, 250)
	cart := createTestCart(t, db, product.PrimaryVariant(), 1)

	order, _, err := svc.Checkout(context.Background(), cart, CheckoutInput{PaymentMethod: models.PaymentMethodStripe})
	require.NoError(t, err)

	gateway.intent = &PaymentIntent{ID: "pi_abc123", Status: "succeeded", AmountReceived: 40000}

	confirmed, err := svc.ConfirmStripePayment(context.Background(), order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, confirmed.Status)

	var payment models.Payment
	require.NoError(t, db.First(&payment, "order_id = ?", order.ID).Error)
	assert.Equal(t, "succeeded", payment.Status)
	assert.Equal(t, 400.0, payment.Amount)
	require.NotNil(t, payment.PaidAt)
}

func TestConfirmStripePaymentWithoutIntent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db, &fakeGateway{})

	product := createTestProduct(t, db, 1, 250)
	cart := createTestCart(t, db, product.PrimaryVariant(), 1)

	// PromptPay order has no remote transaction to confirm.
	order, _, err := svc.Checkout(context.Background(), cart, CheckoutInput{})
	require.NoError(t, err)

	_, err = svc.ConfirmStripePayment(context.Background(), order.OrderNumber)
	assert.ErrorIs(t, err, ErrPaymentNotReady)
}

func TestShipGeneratesTracking(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db, &fakeGateway{})

	product := createTestProduct(t, db, 1, 250)
	cart := createTestCart(t, db, product.PrimaryVariant(), 1)

	order, _, err := svc.Checkout(context.Background(), cart, CheckoutInput{})
	require.NoError(t, err)

	shipped, err := svc.Ship(context.Background(), order.ID, "", "")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusShipped, shipped.Status)
	require.NotNil(t, shipped.Shipment)
	assert.Equal(t, "Kerry Express", shipped.Shipment.Carrier)
	wantPrefix := "KR" + time.Now().UTC().Format("20060102") + "-"
	assert.True(t, strings.HasPrefix(shipped.Shipment.TrackingNo, wantPrefix),
		"tracking = %s", shipped.Shipment.TrackingNo)
	require.NotNil(t, shipped.Shipment.ShippedAt)

	// A second ship call updates the existing shipment in place.
	reshipped, err := svc.Ship(context.Background(), order.ID, "Flash Express", "FL999")
	require.NoError(t, err)
	assert.Equal(t, "Flash Express", reshipped.Shipment.Carrier)
	assert.Equal(t, "FL999", reshipped.Shipment.TrackingNo)

	var count int64
	require.NoError(t, db.Model(&models.Shipment{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStockLedgerDeleteRestores(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db, &fakeGateway{})

	product := createTestProduct(t, db, 5, 250)
	cart := createTestCart(t, db, product.PrimaryVariant(), 3)

	order, _, err := svc.Checkout(context.Background(), cart, CheckoutInput{})
	require.NoError(t, err)
	require.Equal(t, 2, variantStock(t, db, product.PrimaryVariant().ID))

	var item models.OrderItem
	require.NoError(t, db.First(&item, "order_id = ?", order.ID).Error)

	// Deleting the line returns its quantity through the item hook.
	require.NoError(t, db.Delete(&item).Error)
	assert.Equal(t, 5, variantStock(t, db, product.PrimaryVariant().ID))
}

func TestCancelRestock(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db, &fakeGateway{})

	product := createTestProduct(t, db, 5, 250)
	cart := createTestCart(t, db, product.PrimaryVariant(), 3)

	order, _, err := svc.Checkout(context.Background(), cart, CheckoutInput{})
	require.NoError(t, err)
	require.Equal(t, 2, variantStock(t, db, product.PrimaryVariant().ID))

	// Sold-out products get deactivated elsewhere; cancellation reactivates.
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("status", models.ProductStatusInactive).Error)

	result, err := svc.Cancel(context.Background(), order.ID, CancelActionRestock)
	require.NoError(t, err)
	assert.False(t, result.AlreadyCanceled)
	assert.Equal(t, models.OrderStatusCanceled, result.Order.Status)

	assert.Equal(t, 5, variantStock(t, db, product.PrimaryVariant().ID))

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, models.ProductStatusActive, reloaded.Status)

	var payment models.Payment
	require.NoError(t, db.First(&payment, "order_id = ?", order.ID).Error)
	assert.Equal(t, models.PaymentStatusCanceled, payment.Status)
	assert.Nil(t, payment.PaidAt)

	// Canceling again is an informational no-op, nothing restocks twice.
	again, err := svc.Cancel(context.Background(), order.ID, CancelActionRestock)
	require.NoError(t, err)
	assert.True(t, again.AlreadyCanceled)
	assert.Equal(t, 5, variantStock(t, db, product.PrimaryVariant().ID))
}

func TestCancelDamaged(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db, &fakeGateway{})

	product := createTestProduct(t, db, 1, 250)
	cart := createTestCart(t, db, product.PrimaryVariant(), 2)

	// Over-quantity order drives stock negative.
	order, _, err := svc.Checkout(context.Background(), cart, CheckoutInput{})
	require.NoError(t, err)
	require.Equal(t, -1, variantStock(t, db, product.PrimaryVariant().ID))

	result, err := svc.Cancel(context.Background(), order.ID, CancelActionDamaged)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCanceledDamaged, result.Order.Status)

	// No restock, only the negative clamp.
	assert.Equal(t, 0, variantStock(t, db, product.PrimaryVariant().ID))
}

func TestCancelInvalidAction(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrderService(db, &fakeGateway{})

	product := createTestProduct(t, db, 1, 250)
	cart := createTestCart(t, db, product.PrimaryVariant(), 1)

	order, _, err := svc.Checkout(context.Background(), cart, CheckoutInput{})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, "refund")
	assert.ErrorIs(t, err, ErrInvalidCancelAction)
}
