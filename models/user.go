package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a storefront account (customer or admin).
// Address fields persist across orders and are copied into each order's
// immutable snapshot at checkout time.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	AddressLine1 string         `json:"address_line1"`
	AddressLine2 string         `json:"address_line2"`
	City         string         `json:"city"`
	Postcode     string         `json:"postcode"`
	Country      string         `json:"country"`
	Role         string         `gorm:"not null;default:'customer'" json:"role"` // "customer" or "admin"
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// HasCompleteAddress reports whether every field required for delivery is
// present. Checkout refuses to start without a complete address.
func (u *User) HasCompleteAddress() bool {
	return u.Name != "" &&
		u.AddressLine1 != "" &&
		u.City != "" &&
		u.Postcode != "" &&
		u.Country != ""
}

// AddressSnapshot is the immutable copy of a user's delivery address stored
// on an order. Later edits to the account never touch it.
type AddressSnapshot struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
}

// Snapshot captures the user's current delivery address.
func (u *User) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		Name:         u.Name,
		AddressLine1: u.AddressLine1,
		AddressLine2: u.AddressLine2,
		City:         u.City,
		Postcode:     u.Postcode,
		Country:      u.Country,
	}
}
