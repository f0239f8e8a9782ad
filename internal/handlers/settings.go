package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/bettashop/internal/services"
)

// editableSettings are the keys the back office may change.
var editableSettings = map[string]bool{
	services.SettingShopName:             true,
	services.SettingShopEmail:            true,
	services.SettingShopPhone:            true,
	services.SettingPromptPayID:          true,
	services.SettingPromptPayDisplayName: true,
	services.SettingShippingDomestic:     true,
	services.SettingShippingInternation:  true,
}

// SettingsHandler exposes shop settings to the back office.
type SettingsHandler struct {
	settings *services.SettingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// ListSettings returns every stored setting.
func (h *SettingsHandler) ListSettings(c *fiber.Ctx) error {
	settings, err := h.settings.All()
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": settings})
}

// UpdateSettings upserts the provided key/value pairs. Unknown keys are
// rejected.
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req map[string]string
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	for key := range req {
		if !editableSettings[key] {
			return fiber.NewError(fiber.StatusBadRequest, "unknown setting: "+key)
		}
	}

	for key, value := range req {
		if err := h.settings.Set(key, value); err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"success": true})
}
