package handlers

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/example/bettashop/internal/models"
	"github.com/example/bettashop/internal/utils"
)

// ProductHandler serves the storefront catalog and the admin product CRUD.
type ProductHandler struct {
	db        *gorm.DB
	uploadDir string
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB, uploadDir string) *ProductHandler {
	return &ProductHandler{db: db, uploadDir: uploadDir}
}

// ListProducts returns active products with optional tag, availability and
// price filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{}).Where("products.status = ?", models.ProductStatusActive)

	if c.Query("status") == "available" {
		query = query.Joins("JOIN variants ON variants.product_id = products.id").
			Where("variants.stock_qty > 0")
	}

	var tagSlugs []string
	for _, key := range []string{"tail", "color", "grade"} {
		if value := c.Query(key); value != "" {
			tagSlugs = append(tagSlugs, slug.Make(value))
		}
	}
	if len(tagSlugs) > 0 {
		query = query.
			Joins("JOIN product_tags ON product_tags.product_id = products.id").
			Joins("JOIN tags ON tags.id = product_tags.tag_id").
			Where("tags.slug IN ?", tagSlugs).
			Distinct("products.*")
	}

	var products []models.Product
	if err := query.Preload("Variants").Preload("Media.Media").Preload("Tags").
		Order("products.created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	// Price bounds apply to the primary variant, so filter after loading.
	priceMin, _ := strconv.ParseFloat(c.Query("price_min"), 64)
	priceMax, _ := strconv.ParseFloat(c.Query("price_max"), 64)
	if priceMin > 0 || priceMax > 0 {
		filtered := products[:0]
		for _, product := range products {
			variant := product.PrimaryVariant()
			if variant == nil {
				continue
			}
			if priceMin > 0 && variant.Price < priceMin {
				continue
			}
			if priceMax > 0 && variant.Price > priceMax {
				continue
			}
			filtered = append(filtered, product)
		}
		products = filtered
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
		},
	})
}

// GetProduct returns a single product by SKU with gallery and variant.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	sku := c.Params("sku")

	var product models.Product
	if err := h.db.Preload("Variants").Preload("Media.Media").Preload("Tags").
		First(&product, "sku = ?", sku).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productForm struct {
	SKU      string
	TitleTH  string
	TitleEN  string
	DescTH   string
	DescEN   string
	Category string
	IsUnique bool
	Status   string

	Price       float64
	StockQty    int
	WeightGrams int
	Attributes  models.VariantAttributes
}

func parseProductForm(c *fiber.Ctx) productForm {
	price, _ := strconv.ParseFloat(c.FormValue("price"), 64)
	stockQty, _ := strconv.Atoi(c.FormValue("stock_qty"))
	weight, _ := strconv.Atoi(c.FormValue("weight_grams"))
	age, _ := strconv.Atoi(c.FormValue("age_months"))

	return productForm{
		SKU:      c.FormValue("sku"),
		TitleTH:  c.FormValue("title_th"),
		TitleEN:  c.FormValue("title_en"),
		DescTH:   c.FormValue("desc_th"),
		DescEN:   c.FormValue("desc_en"),
		Category: c.FormValue("category", "unique"),
		IsUnique: c.FormValue("is_unique", "true") == "true",
		Status:   c.FormValue("status", models.ProductStatusActive),

		Price:       price,
		StockQty:    stockQty,
		WeightGrams: weight,
		Attributes: models.VariantAttributes{
			Tail:      c.FormValue("tail"),
			Color:     c.FormValue("color"),
			Grade:     c.FormValue("grade"),
			Sex:       c.FormValue("sex"),
			AgeMonths: age,
			Health:    c.FormValue("health"),
			Lineage: models.Lineage{
				Sire: c.FormValue("lineage_sire"),
				Dam:  c.FormValue("lineage_dam"),
			},
		},
	}
}

// CreateProduct persists a product with its variant, uploaded media and tags.
// Accepts multipart form data.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	form := parseProductForm(c)
	if form.SKU == "" {
		return fiber.NewError(fiber.StatusBadRequest, "sku is required")
	}

	stockQty := form.StockQty
	if form.IsUnique || stockQty <= 0 {
		stockQty = 1
	}

	product := models.Product{
		SKU:      form.SKU,
		TitleTH:  form.TitleTH,
		TitleEN:  form.TitleEN,
		DescTH:   form.DescTH,
		DescEN:   form.DescEN,
		Category: form.Category,
		IsUnique: form.IsUnique,
		Status:   models.ProductStatusActive,
		Variants: []models.Variant{{
			Price:       form.Price,
			StockQty:    stockQty,
			WeightGrams: form.WeightGrams,
			Attributes:  form.Attributes,
		}},
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}

		if err := h.saveUploadedMedia(c, tx, &product); err != nil {
			return err
		}

		return h.attachTags(tx, &product, form.Attributes)
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct edits catalog data and variant attributes.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.Preload("Variants").First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	form := parseProductForm(c)

	if form.TitleTH != "" {
		product.TitleTH = form.TitleTH
	}
	if form.TitleEN != "" {
		product.TitleEN = form.TitleEN
	}
	if form.DescTH != "" {
		product.DescTH = form.DescTH
	}
	if form.DescEN != "" {
		product.DescEN = form.DescEN
	}
	product.Status = form.Status
	product.IsUnique = form.IsUnique

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&product).Error; err != nil {
			return err
		}

		if variant := product.PrimaryVariant(); variant != nil {
			if form.Price > 0 {
				variant.Price = form.Price
			}
			if form.WeightGrams > 0 {
				variant.WeightGrams = form.WeightGrams
			}
			variant.Attributes = form.Attributes
			if err := tx.Save(variant).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

func (h *ProductHandler) saveUploadedMedia(c *fiber.Ctx, tx *gorm.DB, product *models.Product) error {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}

	for order, file := range form.File["media"] {
		if file == nil || file.Filename == "" {
			continue
		}

		filename := fmt.Sprintf("%s_%d%s", product.SKU, order, filepath.Ext(file.Filename))
		if err := c.SaveFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
			return err
		}

		media := models.Media{
			URL:     "/static/" + filename,
			Kind:    "image",
			AltText: product.LocalizedTitle("en"),
		}
		if err := tx.Create(&media).Error; err != nil {
			return err
		}

		link := models.ProductMedia{
			ProductID: product.ID,
			MediaID:   media.ID,
			SortOrder: order,
		}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}

	return nil
}

// attachTags upserts tags for the tail, color and grade labels and links them
// to the product.
func (h *ProductHandler) attachTags(tx *gorm.DB, product *models.Product, attrs models.VariantAttributes) error {
	for _, label := range []string{attrs.Tail, attrs.Color, attrs.Grade} {
		if label == "" {
			continue
		}

		tagSlug := slug.Make(label)

		var tag models.Tag
		err := tx.First(&tag, "slug = ?", tagSlug).Error
		if err == gorm.ErrRecordNotFound {
			tag = models.Tag{Name: label, Slug: tagSlug}
			if err := tx.Create(&tag).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := tx.Model(product).Association("Tags").Append(&tag); err != nil {
			return err
		}
	}

	return nil
}
