package handlers

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/example/bettashop/internal/config"
	"github.com/example/bettashop/internal/models"
	"github.com/example/bettashop/internal/services"
)

// PaymentHandler serves the customer-facing payment endpoints: PromptPay QR,
// Stripe intent retrieval/confirmation and transfer slip upload.
type PaymentHandler struct {
	db        *gorm.DB
	cfg       *config.Config
	orders    *services.OrderService
	gateway   services.PaymentGateway
	settings  *services.SettingsService
	uploadDir string
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(db *gorm.DB, cfg *config.Config, orders *services.OrderService, gateway services.PaymentGateway, settings *services.SettingsService) *PaymentHandler {
	return &PaymentHandler{
		db:        db,
		cfg:       cfg,
		orders:    orders,
		gateway:   gateway,
		settings:  settings,
		uploadDir: cfg.MediaUploadDir,
	}
}

func (h *PaymentHandler) findOrder(c *fiber.Ctx) (*models.Order, error) {
	var order models.Order
	if err := h.db.Preload("Payments").
		First(&order, "order_number = ?", c.Params("order_no")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

// PromptPayQR renders the PromptPay payload for the order total as a PNG.
func (h *PaymentHandler) PromptPayQR(c *fiber.Ctx) error {
	order, err := h.findOrder(c)
	if err != nil {
		return err
	}

	if order.GrandTotal <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "order total is not payable")
	}

	payload := services.PromptPayPayload{
		PromptPayID:  h.settings.PromptPayID(),
		Amount:       order.GrandTotal,
		MerchantName: h.settings.PromptPayDisplayName(),
	}

	png, err := qrcode.Encode(payload.Encode(), qrcode.Medium, 512)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// StripeIntent returns the client secret of the order's payment intent so the
// frontend can collect the card.
func (h *PaymentHandler) StripeIntent(c *fiber.Ctx) error {
	order, err := h.findOrder(c)
	if err != nil {
		return err
	}

	if order.PaymentMethod != models.PaymentMethodStripe {
		return fiber.NewError(fiber.StatusBadRequest, "unsupported payment method")
	}

	payment := order.LatestPayment()
	if payment == nil || payment.Ref == "" {
		return fiber.NewError(fiber.StatusBadRequest, "payment not ready")
	}

	if h.cfg.StripePublicKey == "" {
		return fiber.NewError(fiber.StatusInternalServerError, "missing publishable key")
	}

	intent, err := h.gateway.RetrieveIntent(c.Context(), payment.Ref)
	if err != nil {
		if errors.Is(err, services.ErrGatewayNotConfigured) {
			return fiber.NewError(fiber.StatusInternalServerError, "payment gateway is not configured")
		}
		log.Printf("[Payment] intent retrieval failed for order %s: %v", order.OrderNumber, err)
		return fiber.NewError(fiber.StatusBadGateway, "payment provider error")
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"client_secret":   intent.ClientSecret,
		"status":          intent.Status,
		"publishable_key": h.cfg.StripePublicKey,
		"amount":          intent.Amount,
		"currency":        intent.Currency,
	})
}

// StripeConfirm re-fetches the remote transaction and mirrors its state onto
// the order.
func (h *PaymentHandler) StripeConfirm(c *fiber.Ctx) error {
	order, err := h.orders.ConfirmStripePayment(c.Context(), c.Params("order_no"))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		case errors.Is(err, services.ErrPaymentNotReady):
			return fiber.NewError(fiber.StatusBadRequest, "payment not found")
		case errors.Is(err, services.ErrGatewayNotConfigured):
			return fiber.NewError(fiber.StatusInternalServerError, "payment gateway is not configured")
		default:
			log.Printf("[Payment] stripe confirmation failed for order %s: %v", c.Params("order_no"), err)
			return fiber.NewError(fiber.StatusBadGateway, "payment provider error")
		}
	}

	payment := order.LatestPayment()
	status := ""
	if payment != nil {
		status = payment.Status
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"status":       status,
		"order_status": order.Status,
	})
}

// UploadSlip attaches a proof-of-transfer image to the latest payment,
// creating a transfer payment when none exists.
func (h *PaymentHandler) UploadSlip(c *fiber.Ctx) error {
	order, err := h.findOrder(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("slip")
	if err != nil || file == nil || file.Filename == "" {
		return fiber.NewError(fiber.StatusBadRequest, "slip file is required")
	}

	filename := fmt.Sprintf("%s_slip_%d%s", order.OrderNumber, time.Now().UTC().Unix(), filepath.Ext(file.Filename))
	if err := c.SaveFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
		return err
	}

	slipURL := "/static/" + filename

	payment := order.LatestPayment()
	if payment == nil {
		created := models.Payment{
			OrderID: order.ID,
			Method:  models.PaymentMethodTransfer,
			Amount:  order.GrandTotal,
			Status:  models.PaymentStatusInit,
			SlipURL: slipURL,
		}
		if err := h.db.Create(&created).Error; err != nil {
			return err
		}
	} else {
		payment.SlipURL = slipURL
		payment.Status = models.PaymentStatusInit
		if err := h.db.Save(payment).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"slip_url": slipURL,
	})
}
