package models

import "github.com/google/uuid"

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product is a catalog entry. For unique fish every product carries a single
// variant with stock_qty 1.
type Product struct {
	BaseModel
	SKU      string `gorm:"uniqueIndex" json:"sku"`
	TitleTH  string `json:"title_th"`
	TitleEN  string `json:"title_en"`
	DescTH   string `json:"desc_th"`
	DescEN   string `json:"desc_en"`
	Category string `json:"category"`
	IsUnique bool   `gorm:"default:true" json:"is_unique"`
	Status   string `gorm:"default:active" json:"status"`

	Variants []Variant      `gorm:"constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Media    []ProductMedia `gorm:"constraint:OnDelete:CASCADE" json:"media,omitempty"`
	Tags     []Tag          `gorm:"many2many:product_tags;" json:"tags,omitempty"`
}

// PrimaryVariant returns the first variant, which is the purchasable one for
// unique products.
func (p *Product) PrimaryVariant() *Variant {
	if len(p.Variants) == 0 {
		return nil
	}
	return &p.Variants[0]
}

// LocalizedTitle picks the title for the requested locale, falling back to
// whichever title exists and finally the SKU.
func (p *Product) LocalizedTitle(locale string) string {
	if locale == "en" && p.TitleEN != "" {
		return p.TitleEN
	}
	if locale == "th" && p.TitleTH != "" {
		return p.TitleTH
	}
	if p.TitleEN != "" {
		return p.TitleEN
	}
	if p.TitleTH != "" {
		return p.TitleTH
	}
	return p.SKU
}

// Lineage records the parents of a fish.
type Lineage struct {
	Sire string `json:"sire,omitempty"`
	Dam  string `json:"dam,omitempty"`
}

// VariantAttributes describes a single fish.
type VariantAttributes struct {
	Tail      string  `json:"tail,omitempty"`
	Color     string  `json:"color,omitempty"`
	Grade     string  `json:"grade,omitempty"`
	Sex       string  `json:"sex,omitempty"`
	AgeMonths int     `json:"age_months,omitempty"`
	Health    string  `json:"health,omitempty"`
	Lineage   Lineage `json:"lineage,omitempty"`
}

// Variant is the priced, stocked purchasable unit of a Product.
//
// StockQty is incrementally maintained by the OrderItem hooks in order.go and
// is never re-derived. It may go negative under concurrent or over-quantity
// orders; only a damaged cancellation clamps it back to zero.
type Variant struct {
	BaseModel
	ProductID      uuid.UUID         `gorm:"type:uuid;index" json:"product_id"`
	Product        *Product          `json:"product,omitempty"`
	Price          float64           `json:"price"`
	CompareAtPrice float64           `json:"compare_at_price"`
	StockQty       int               `gorm:"default:1" json:"stock_qty"`
	WeightGrams    int               `json:"weight_grams"`
	Attributes     VariantAttributes `gorm:"type:jsonb;serializer:json" json:"attributes"`
}

// IsAvailable reports whether the variant can still be added to a cart.
func (v *Variant) IsAvailable() bool {
	return v.StockQty > 0
}

// Media is an uploaded image or video.
type Media struct {
	BaseModel
	URL     string `json:"url"`
	Kind    string `gorm:"default:image" json:"kind"`
	AltText string `json:"alt_text"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// ProductMedia orders media within a product gallery.
type ProductMedia struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	MediaID   uuid.UUID `gorm:"type:uuid;index" json:"media_id"`
	Media     *Media    `json:"media,omitempty"`
	SortOrder int       `json:"sort_order"`
}

// Tag labels products for storefront filtering (tail type, color, grade).
type Tag struct {
	BaseModel
	Name string `gorm:"uniqueIndex" json:"name"`
	Slug string `gorm:"uniqueIndex" json:"slug"`
}
