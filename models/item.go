package models

import (
	"time"

	"gorm.io/gorm"
)

// Item is a catalogue entry. Prices are integer minor-currency units
// (pence); any fractional display conversion happens in the client, never
// in storage.
type Item struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Description  string         `json:"description"`
	CategoryID   uint           `gorm:"not null;index" json:"category_id"`
	Category     Category       `gorm:"foreignKey:CategoryID" json:"-"`
	Species      string         `gorm:"index" json:"species"` // species slug
	PriceCents   int64          `gorm:"not null;check:price_cents >= 0" json:"price_cents"`
	ImageURL     string         `json:"image_url"`
	ImageS3Key   *string        `json:"image_s3_key,omitempty"`
	InStock      bool           `gorm:"not null;default:true" json:"in_stock"`
	SpecialOffer bool           `gorm:"not null;default:false" json:"special_offer"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Item model
func (Item) TableName() string {
	return "items"
}
