package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Category is a catalogue taxonomy entry (e.g. "Dry Food", "Toys").
// Deletion is refused while any item still references it.
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// Slugify lowercases a name and collapses whitespace runs into hyphens,
// matching the slugs the storefront client links with.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
