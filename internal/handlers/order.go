package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/bettashop/internal/middleware"
	"github.com/example/bettashop/internal/models"
	"github.com/example/bettashop/internal/services"
)

// OrderHandler serves checkout and order status for the storefront.
type OrderHandler struct {
	db     *gorm.DB
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, orders *services.OrderService) *OrderHandler {
	return &OrderHandler{db: db, orders: orders}
}

type checkoutRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Country       string `json:"country"`
	Coupon        string `json:"coupon"`
	PaymentMethod string `json:"payment_method"`
}

// Checkout converts the session cart into a pending order.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cart, err := resolveCart(c, h.db, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
		}
		return err
	}

	input := services.CheckoutInput{
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: req.Phone,
		Address:       req.Address,
		Country:       req.Country,
		CouponCode:    req.Coupon,
		PaymentMethod: req.PaymentMethod,
	}
	if userID, ok := middleware.GetCurrentUserID(c); ok {
		input.UserID = &userID
	}

	order, warnings, err := h.orders.Checkout(c.Context(), cart, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
		case errors.Is(err, services.ErrGatewayNotConfigured):
			return fiber.NewError(fiber.StatusInternalServerError, "payment gateway is not configured")
		case errors.Is(err, services.ErrGatewayFailure):
			// The provider error is logged, not exposed.
			log.Printf("[Checkout] payment intent creation failed: %v", err)
			return fiber.NewError(fiber.StatusBadGateway, "unable to start payment, please try again")
		default:
			return err
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"warnings": warnings,
		"data": fiber.Map{
			"order_number": order.OrderNumber,
			"status":       order.Status,
			"subtotal":     order.Subtotal,
			"shipping_fee": order.ShippingFee,
			"discount":     order.Discount,
			"grand_total":  order.GrandTotal,
			"currency":     order.Currency,
		},
	})
}

// GetOrderStatus returns an order by its public order number.
func (h *OrderHandler) GetOrderStatus(c *fiber.Ctx) error {
	orderNumber := c.Params("order_no")

	var order models.Order
	if err := h.db.Preload("Items").Preload("Payments").Preload("Shipment").
		First(&order, "order_number = ?", orderNumber).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
