package services

import (
	"strconv"

	"gorm.io/gorm"

	"github.com/example/bettashop/internal/config"
	"github.com/example/bettashop/internal/models"
)

// Setting keys editable from the back office.
const (
	SettingShopName             = "shop_name"
	SettingShopEmail            = "shop_email"
	SettingShopPhone            = "shop_phone"
	SettingPromptPayID          = "promptpay_id"
	SettingPromptPayDisplayName = "promptpay_display_name"
	SettingShippingDomestic     = "shipping_domestic_base"
	SettingShippingInternation  = "shipping_international_base"
)

// SettingsService overlays database-stored settings on environment defaults.
type SettingsService struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(db *gorm.DB, cfg *config.Config) *SettingsService {
	return &SettingsService{db: db, cfg: cfg}
}

// Get returns the stored value for key, or fallback when absent.
func (s *SettingsService) Get(key, fallback string) string {
	var setting models.Setting
	if err := s.db.First(&setting, "key = ?", key).Error; err != nil {
		return fallback
	}
	if setting.Value == "" {
		return fallback
	}
	return setting.Value
}

// Set upserts a setting value.
func (s *SettingsService) Set(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	return s.db.Save(&setting).Error
}

// All returns every stored setting.
func (s *SettingsService) All() ([]models.Setting, error) {
	var settings []models.Setting
	if err := s.db.Order("key").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// PromptPayID resolves the payee identifier for QR payloads.
func (s *SettingsService) PromptPayID() string {
	return s.Get(SettingPromptPayID, s.cfg.PromptPayID)
}

// PromptPayDisplayName resolves the merchant display name.
func (s *SettingsService) PromptPayDisplayName() string {
	return s.Get(SettingPromptPayDisplayName, s.cfg.PromptPayDisplayName)
}

// ShippingCalculator builds a calculator from the effective base fees.
func (s *SettingsService) ShippingCalculator() *ShippingCalculator {
	domestic := s.getFloat(SettingShippingDomestic, s.cfg.ShippingDomesticBase)
	international := s.getFloat(SettingShippingInternation, s.cfg.ShippingInternationalBase)
	return NewShippingCalculator(domestic, international)
}

func (s *SettingsService) getFloat(key string, fallback float64) float64 {
	raw := s.Get(key, "")
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
