package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bettashop/internal/models"
)

const cartSessionCookie = "cart_session"

// CartHandler manages session-scoped carts.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// resolveCart finds the cart for the request's session cookie, creating both
// the session token and the cart when create is set.
func resolveCart(c *fiber.Ctx, db *gorm.DB, create bool) (*models.Cart, error) {
	sessionID := c.Cookies(cartSessionCookie)

	if sessionID != "" {
		var cart models.Cart
		err := db.Preload("Items.Variant.Product").First(&cart, "session_id = ?", sessionID).Error
		if err == nil {
			return &cart, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	if !create {
		return nil, gorm.ErrRecordNotFound
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     cartSessionCookie,
			Value:    sessionID,
			Expires:  time.Now().Add(30 * 24 * time.Hour),
			HTTPOnly: true,
			SameSite: "Lax",
		})
	}

	cart := models.Cart{SessionID: sessionID}
	if err := db.Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetCart returns the session cart with totals.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	cart, err := resolveCart(c, h.db, true)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    cart,
		"totals": fiber.Map{
			"subtotal": cart.Total(),
		},
	})
}

type addCartItemRequest struct {
	VariantID string `json:"variant_id"`
}

// AddItem puts one unit of a variant into the cart, bumping quantity when the
// variant is already present.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req addCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "variant_id is required")
	}

	var variant models.Variant
	if err := h.db.First(&variant, "id = ?", variantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "variant not found")
		}
		return err
	}

	if !variant.IsAvailable() {
		return fiber.NewError(fiber.StatusBadRequest, "item is out of stock")
	}

	cart, err := resolveCart(c, h.db, true)
	if err != nil {
		return err
	}

	var existing *models.CartItem
	for i := range cart.Items {
		if cart.Items[i].VariantID == variantID {
			existing = &cart.Items[i]
			break
		}
	}

	if existing != nil {
		existing.Qty++
		if err := h.db.Save(existing).Error; err != nil {
			return err
		}
	} else {
		item := models.CartItem{
			CartID:    cart.ID,
			VariantID: variantID,
			Qty:       1,
			PriceAt:   variant.Price,
		}
		if err := h.db.Create(&item).Error; err != nil {
			return err
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// RemoveItem deletes one cart line.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	cart, err := resolveCart(c, h.db, false)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "cart not found")
		}
		return err
	}

	var item models.CartItem
	if err := h.db.First(&item, "id = ? AND cart_id = ?", itemID, cart.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "cart item not found")
		}
		return err
	}

	if err := h.db.Delete(&item).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}
