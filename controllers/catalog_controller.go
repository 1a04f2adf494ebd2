package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/grange-pets/pet-market-api/config"
	"github.com/grange-pets/pet-market-api/models"
)

// ListCategories handles GET /api/categories - public taxonomy listing
func ListCategories(c *gin.Context) {
	db := config.GetDB()
	var categories []models.Category
	if err := db.Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load categories",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    categories,
	})
}

// ListSpecies handles GET /api/species - public taxonomy listing
func ListSpecies(c *gin.Context) {
	db := config.GetDB()
	var species []models.Species
	if err := db.Order("id").Find(&species).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load species",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    species,
	})
}

// itemWithCategory is an item row with the joined category name.
type itemWithCategory struct {
	models.Item
	CategoryName string `json:"category"`
}

// ListItems handles GET /api/items?species=&category=&q= - the public
// catalogue query. Filters are ANDed. An unknown category slug yields an
// empty result rather than an error; the storefront links to legacy slugs.
func ListItems(c *gin.Context) {
	db := config.GetDB()

	query := db.Model(&models.Item{}).
		Select("items.*, categories.name AS category_name").
		Joins("JOIN categories ON categories.id = items.category_id")

	if species := c.Query("species"); species != "" {
		query = query.Where("LOWER(items.species) = ?", strings.ToLower(species))
	}

	if categorySlug := c.Query("category"); categorySlug != "" {
		var category models.Category
		if err := db.Where("slug = ?", categorySlug).First(&category).Error; err != nil {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data":    []itemWithCategory{},
			})
			return
		}
		query = query.Where("items.category_id = ?", category.ID)
	}

	if q := c.Query("q"); q != "" {
		query = query.Where("items.name LIKE ?", "%"+q+"%")
	}

	items := []itemWithCategory{}
	if err := query.Order("items.id DESC").Scan(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load items",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}
