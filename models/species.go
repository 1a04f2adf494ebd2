package models

import (
	"time"

	"gorm.io/gorm"
)

// Species is the second catalogue taxonomy (dog, cat, small-animal, ...).
// Items reference a species by slug, not by id, so the referential-integrity
// guard on deletion counts items by slug.
type Species struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	Label     string         `gorm:"uniqueIndex;not null" json:"label"`
	Icon      string         `json:"icon"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Species model
func (Species) TableName() string {
	return "species"
}
