package models

import "time"

// BlogPost is a store news article.
type BlogPost struct {
	BaseModel
	Title       string     `json:"title"`
	Slug        string     `gorm:"uniqueIndex" json:"slug"`
	Content     string     `json:"content"`
	HeroImage   string     `json:"hero_image"`
	PublishedAt *time.Time `json:"published_at"`
	IsPublished bool       `json:"is_published"`
}

// Publish marks the post published, keeping the first publish timestamp.
func (p *BlogPost) Publish(now time.Time) {
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	p.IsPublished = true
}
