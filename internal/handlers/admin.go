package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bettashop/internal/models"
	"github.com/example/bettashop/internal/services"
	"github.com/example/bettashop/internal/utils"
)

// AdminHandler manages the back-office order workflow.
type AdminHandler struct {
	db     *gorm.DB
	orders *services.OrderService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, orders *services.OrderService) *AdminHandler {
	return &AdminHandler{db: db, orders: orders}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var ordersPending int64
	if err := h.db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&ordersPending).Error; err != nil {
		return err
	}

	var ordersPaid int64
	if err := h.db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPaid).Count(&ordersPaid).Error; err != nil {
		return err
	}

	var totalRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("status NOT IN ?", []string{models.OrderStatusCanceled, models.OrderStatusCanceledDamaged}).
		Select("COALESCE(SUM(grand_total), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	var productsActive int64
	if err := h.db.Model(&models.Product{}).Where("status = ?", models.ProductStatusActive).Count(&productsActive).Error; err != nil {
		return err
	}

	var latestOrders []models.Order
	if err := h.db.Preload("Items").
		Order("created_at desc").
		Limit(5).
		Find(&latestOrders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"orders_pending":  ordersPending,
			"orders_paid":     ordersPaid,
			"total_revenue":   totalRevenue,
			"products_active": productsActive,
			"latest_orders":   latestOrders,
		},
	})
}

// ListOrders returns all orders with pagination and status filter.
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("order_number LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("Payments").Preload("Shipment").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns one order with all children.
func (h *AdminHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items.Variant.Product").Preload("Payments").Preload("Shipment").
		First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ConfirmPayment marks a manual transfer as confirmed and the order as paid.
func (h *AdminHandler) ConfirmPayment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.ConfirmManualPayment(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type shipOrderRequest struct {
	Carrier    string `json:"carrier"`
	TrackingNo string `json:"tracking_no"`
}

// ShipOrder creates or updates the shipment and marks the order shipped.
func (h *AdminHandler) ShipOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req shipOrderRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.Ship(c.Context(), id, req.Carrier, req.TrackingNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type cancelOrderRequest struct {
	Action string `json:"action"`
}

// CancelOrder cancels an order with either the restock or damaged action.
// Canceling an already-canceled order reports success without changes.
func (h *AdminHandler) CancelOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	req := cancelOrderRequest{Action: services.CancelActionRestock}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	if req.Action == "" {
		req.Action = services.CancelActionRestock
	}

	result, err := h.orders.Cancel(c.Context(), id, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		case errors.Is(err, services.ErrInvalidCancelAction):
			return fiber.NewError(fiber.StatusBadRequest, "invalid cancellation action")
		default:
			return err
		}
	}

	message := "order canceled"
	if result.AlreadyCanceled {
		message = "order is already canceled"
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"message":          message,
		"already_canceled": result.AlreadyCanceled,
		"data":             result.Order,
	})
}
