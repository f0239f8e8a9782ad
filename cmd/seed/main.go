package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/example/bettashop/internal/config"
	"github.com/example/bettashop/internal/database"
	"github.com/example/bettashop/internal/models"
)

type seedProduct struct {
	SKU      string
	TitleTH  string
	TitleEN  string
	DescEN   string
	Category string
	Price    float64
	Compare  float64
	Weight   int
	Attrs    models.VariantAttributes
}

var sampleProducts = []seedProduct{
	{
		SKU:      "BT-HM-0001",
		TitleTH:  "ปลากัดฮาล์ฟมูนแดงทองแดง",
		TitleEN:  "Copper Red Halfmoon",
		DescEN:   "Show-grade halfmoon male with a full 180-degree spread.",
		Category: "halfmoon",
		Price:    1290,
		Compare:  1590,
		Weight:   120,
		Attrs: models.VariantAttributes{
			Tail:      "halfmoon",
			Color:     "copper red",
			Grade:     "show",
			Sex:       "male",
			AgeMonths: 5,
			Health:    "excellent",
			Lineage:   models.Lineage{Sire: "BT-HM-S77", Dam: "BT-HM-D41"},
		},
	},
	{
		SKU:      "BT-CT-0002",
		TitleTH:  "ปลากัดคราวน์เทลฟ้าขาว",
		TitleEN:  "Blue White Crowntail",
		DescEN:   "Crowntail male with strong ray extensions and clean white edging.",
		Category: "crowntail",
		Price:    690,
		Weight:   110,
		Attrs: models.VariantAttributes{
			Tail:      "crowntail",
			Color:     "blue white",
			Grade:     "a",
			Sex:       "male",
			AgeMonths: 4,
			Health:    "excellent",
		},
	},
	{
		SKU:      "BT-PK-0003",
		TitleTH:  "ปลากัดพลากัดเขียวมรกต",
		TitleEN:  "Emerald Green Plakat",
		DescEN:   "Traditional plakat with deep emerald body and short, powerful fins.",
		Category: "plakat",
		Price:    450,
		Weight:   100,
		Attrs: models.VariantAttributes{
			Tail:      "plakat",
			Color:     "emerald green",
			Grade:     "a",
			Sex:       "male",
			AgeMonths: 6,
			Health:    "good",
		},
	},
	{
		SKU:      "BT-DT-0004",
		TitleTH:  "ปลากัดดับเบิลเทลแฟนซีโคอิ",
		TitleEN:  "Fancy Koi Doubletail",
		DescEN:   "Doubletail with koi patterning, symmetrical lobes, active feeder.",
		Category: "doubletail",
		Price:    890,
		Compare:  990,
		Weight:   115,
		Attrs: models.VariantAttributes{
			Tail:      "doubletail",
			Color:     "koi",
			Grade:     "aa",
			Sex:       "female",
			AgeMonths: 4,
			Health:    "excellent",
		},
	},
}

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	if err := seedProducts(db); err != nil {
		log.Fatalf("seeding products: %v", err)
	}
	if err := seedCoupons(db); err != nil {
		log.Fatalf("seeding coupons: %v", err)
	}
	if err := seedBlog(db); err != nil {
		log.Fatalf("seeding blog: %v", err)
	}

	log.Println("[Seed] done")
}

func seedProducts(db *gorm.DB) error {
	for _, sp := range sampleProducts {
		var existing models.Product
		err := db.First(&existing, "sku = ?", sp.SKU).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		product := models.Product{
			SKU:      sp.SKU,
			TitleTH:  sp.TitleTH,
			TitleEN:  sp.TitleEN,
			DescEN:   sp.DescEN,
			Category: sp.Category,
			IsUnique: true,
			Status:   models.ProductStatusActive,
			Variants: []models.Variant{{
				Price:          sp.Price,
				CompareAtPrice: sp.Compare,
				StockQty:       1,
				WeightGrams:    sp.Weight,
				Attributes:     sp.Attrs,
			}},
		}

		if err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			if err := attachMedia(tx, &product); err != nil {
				return err
			}
			return attachTags(tx, &product, sp.Attrs)
		}); err != nil {
			return err
		}

		log.Printf("[Seed] product %s (%s)", product.SKU, product.TitleEN)
	}

	return nil
}

func attachMedia(tx *gorm.DB, product *models.Product) error {
	media := models.Media{
		URL:     fmt.Sprintf("/static/%s_0.jpg", product.SKU),
		Kind:    "image",
		AltText: product.TitleEN,
	}
	if err := tx.Create(&media).Error; err != nil {
		return err
	}

	link := models.ProductMedia{
		ProductID: product.ID,
		MediaID:   media.ID,
	}
	return tx.Create(&link).Error
}

func attachTags(tx *gorm.DB, product *models.Product, attrs models.VariantAttributes) error {
	for _, label := range []string{attrs.Tail, attrs.Color, attrs.Grade} {
		if label == "" {
			continue
		}

		tag := models.Tag{Name: label, Slug: slug.Make(label)}
		if err := tx.Where("slug = ?", tag.Slug).FirstOrCreate(&tag).Error; err != nil {
			return err
		}
		if err := tx.Model(product).Association("Tags").Append(&tag); err != nil {
			return err
		}
	}
	return nil
}

func seedCoupons(db *gorm.DB) error {
	end := time.Now().AddDate(0, 3, 0)
	coupons := []models.Coupon{
		{Code: "WELCOME10", Type: models.CouponTypePercent, Value: 10, MinSubtotal: 500, EndAt: &end, IsActive: true},
		{Code: "FREESHIP150", Type: models.CouponTypeFixed, Value: 150, MinSubtotal: 1000, MaxUses: 200, IsActive: true},
	}

	for i := range coupons {
		if err := db.Where("code = ?", coupons[i].Code).FirstOrCreate(&coupons[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedBlog(db *gorm.DB) error {
	post := models.BlogPost{
		Title:   "Conditioning a Halfmoon for Show",
		Content: "Feeding schedule, water changes and flaring routine for the month before a show.",
	}
	post.Slug = slug.Make(post.Title)
	post.Publish(time.Now())

	return db.Where("slug = ?", post.Slug).FirstOrCreate(&post).Error
}
