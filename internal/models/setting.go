package models

import "time"

// Setting is a key/value override for shop configuration. Values stored here
// take precedence over environment defaults.
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
