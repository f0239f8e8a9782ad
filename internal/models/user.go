package models

import "github.com/google/uuid"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a storefront customer or back-office admin.
type User struct {
	BaseModel
	Name         string    `json:"name"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Role         string    `gorm:"default:customer" json:"role"`
	Addresses    []Address `gorm:"constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	Orders       []Order   `json:"orders,omitempty"`
}

// IsAdmin reports whether the user may access back-office endpoints.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Address is a saved delivery address.
type Address struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Country    string    `json:"country"`
	Province   string    `json:"province"`
	District   string    `json:"district"`
	PostalCode string    `json:"postal_code"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2"`
	IsDefault  bool      `json:"is_default"`
}
