package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/example/bettashop/internal/models"
	"github.com/example/bettashop/internal/utils"
)

// BlogHandler serves store news posts.
type BlogHandler struct {
	db *gorm.DB
}

// NewBlogHandler constructs BlogHandler.
func NewBlogHandler(db *gorm.DB) *BlogHandler {
	return &BlogHandler{db: db}
}

// ListPosts returns published posts for the storefront.
func (h *BlogHandler) ListPosts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var posts []models.BlogPost
	if err := h.db.Where("is_published = ?", true).
		Order("published_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&posts).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": posts})
}

// GetPost returns one published post by slug.
func (h *BlogHandler) GetPost(c *fiber.Ctx) error {
	var post models.BlogPost
	if err := h.db.First(&post, "slug = ? AND is_published = ?", c.Params("slug"), true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "post not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": post})
}

// ListAllPosts returns every post for the back office.
func (h *BlogHandler) ListAllPosts(c *fiber.Ctx) error {
	var posts []models.BlogPost
	if err := h.db.Order("created_at desc").Find(&posts).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": posts})
}

type blogPostRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Content     string `json:"content"`
	HeroImage   string `json:"hero_image"`
	IsPublished bool   `json:"is_published"`
}

// CreatePost creates a post with a unique slug.
func (h *BlogHandler) CreatePost(c *fiber.Ctx) error {
	var req blogPostRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Title == "" || req.Content == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title and content are required")
	}

	slugValue := req.Slug
	if slugValue == "" {
		slugValue = req.Title
	}
	baseSlug := slug.Make(slugValue)
	if baseSlug == "" {
		baseSlug = fmt.Sprintf("post-%d", time.Now().UTC().Unix())
	}

	uniqueSlug, err := h.uniqueSlug(baseSlug, uuid.Nil)
	if err != nil {
		return err
	}

	post := models.BlogPost{
		Title:     req.Title,
		Slug:      uniqueSlug,
		Content:   req.Content,
		HeroImage: req.HeroImage,
	}
	if req.IsPublished {
		post.Publish(time.Now().UTC())
	}

	if err := h.db.Create(&post).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": post})
}

// UpdatePost edits a post, regenerating the slug when requested.
func (h *BlogHandler) UpdatePost(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var post models.BlogPost
	if err := h.db.First(&post, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "post not found")
		}
		return err
	}

	var req blogPostRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Title == "" || req.Content == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title and content are required")
	}

	post.Title = req.Title
	post.Content = req.Content
	post.HeroImage = req.HeroImage

	if req.Slug != "" {
		baseSlug := slug.Make(req.Slug)
		if baseSlug != "" && baseSlug != post.Slug {
			uniqueSlug, err := h.uniqueSlug(baseSlug, post.ID)
			if err != nil {
				return err
			}
			post.Slug = uniqueSlug
		}
	}

	if req.IsPublished {
		post.Publish(time.Now().UTC())
	} else {
		post.IsPublished = false
		post.PublishedAt = nil
	}

	if err := h.db.Save(&post).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": post})
}

// DeletePost removes a post.
func (h *BlogHandler) DeletePost(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.BlogPost{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}

// uniqueSlug appends a counter until the slug is free, ignoring the post
// being edited.
func (h *BlogHandler) uniqueSlug(baseSlug string, selfID uuid.UUID) (string, error) {
	candidate := baseSlug
	counter := 2
	for {
		var existing models.BlogPost
		err := h.db.First(&existing, "slug = ? AND id <> ?", candidate, selfID).Error
		if err == gorm.ErrRecordNotFound {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", baseSlug, counter)
		counter++
	}
}
