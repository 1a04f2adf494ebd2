package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/grange-pets/pet-market-api/config"
	"github.com/grange-pets/pet-market-api/models"
)

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateSpeciesRequest represents the request body for creating a species
type CreateSpeciesRequest struct {
	Label string `json:"label" binding:"required"`
	Slug  string `json:"slug"`
	Icon  string `json:"icon"`
}

// UpsertItemRequest represents the request body for creating or updating an
// item. An id makes it an update. Price is integer minor units; no floats.
type UpsertItemRequest struct {
	ID           uint   `json:"id"`
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	CategoryID   uint   `json:"category_id" binding:"required"`
	Species      string `json:"species"`
	PriceCents   *int64 `json:"price_cents" binding:"required"`
	ImageURL     string `json:"image_url"`
	ImageS3Key   string `json:"image_s3_key"`
	InStock      *bool  `json:"in_stock"`
	SpecialOffer bool   `json:"special_offer"`
}

func isDuplicateKeyError(err error) bool {
	// Works with both PostgreSQL and SQLite
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}

// CreateCategory handles POST /api/admin/categories
func CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Name is required",
			},
		})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Name is required",
			},
		})
		return
	}

	category := models.Category{
		Name: name,
		Slug: models.Slugify(name),
	}

	db := config.GetDB()
	if err := db.Create(&category).Error; err != nil {
		if isDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CATEGORY_EXISTS",
					"message": "A category with this name already exists",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create category",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    category,
	})
}

// DeleteCategory handles DELETE /api/admin/categories/:id - refused while
// any item still references the category (count-then-refuse, no cascade).
func DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid category ID",
			},
		})
		return
	}

	db := config.GetDB()

	var count int64
	if err := db.Model(&models.Item{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to check category references",
			},
		})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CATEGORY_IN_USE",
				"message": "Cannot delete a category that still has items",
			},
		})
		return
	}

	if err := db.Delete(&models.Category{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete category",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// CreateSpecies handles POST /api/admin/species
func CreateSpecies(c *gin.Context) {
	var req CreateSpeciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Label is required",
			},
		})
		return
	}

	label := strings.TrimSpace(req.Label)
	if label == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Label is required",
			},
		})
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = label
	}
	slug = models.Slugify(slug)

	species := models.Species{
		Slug:  slug,
		Label: label,
		Icon:  req.Icon,
	}

	db := config.GetDB()
	if err := db.Create(&species).Error; err != nil {
		if isDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SPECIES_EXISTS",
					"message": "A species with this slug or label already exists",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create species",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    species,
	})
}

// DeleteSpecies handles DELETE /api/admin/species/:id. Items reference a
// species by slug, so the guard counts items by the species' slug.
func DeleteSpecies(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid species ID",
			},
		})
		return
	}

	db := config.GetDB()

	var species models.Species
	if err := db.First(&species, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SPECIES_NOT_FOUND",
				"message": "Species not found",
			},
		})
		return
	}

	var count int64
	if err := db.Model(&models.Item{}).Where("species = ?", species.Slug).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to check species references",
			},
		})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SPECIES_IN_USE",
				"message": "Cannot delete a species that still has items",
			},
		})
		return
	}

	if err := db.Delete(&species).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete species",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// UpsertItem handles POST /api/admin/items - create when no id is supplied,
// update otherwise.
func UpsertItem(c *gin.Context) {
	var req UpsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if *req.PriceCents < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PRICE",
				"message": "Price must be a non-negative amount in pence",
			},
		})
		return
	}

	db := config.GetDB()

	// The referenced category must exist
	var category models.Category
	if err := db.First(&category, req.CategoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CATEGORY_NOT_FOUND",
				"message": "Referenced category does not exist",
			},
		})
		return
	}

	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	var imageKey *string
	if req.ImageS3Key != "" {
		imageKey = &req.ImageS3Key
	}

	item := models.Item{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		Species:      strings.ToLower(strings.TrimSpace(req.Species)),
		PriceCents:   *req.PriceCents,
		ImageURL:     req.ImageURL,
		ImageS3Key:   imageKey,
		InStock:      inStock,
		SpecialOffer: req.SpecialOffer,
	}

	if req.ID != 0 {
		var existing models.Item
		if err := db.First(&existing, req.ID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ITEM_NOT_FOUND",
					"message": "Item not found",
				},
			})
			return
		}
		item.ID = req.ID
		item.CreatedAt = existing.CreatedAt
		if err := db.Save(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update item",
				},
			})
			return
		}
	} else {
		if err := db.Create(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to create item",
				},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    item,
	})
}

// DeleteItem handles DELETE /api/admin/items/:id
func DeleteItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid item ID",
			},
		})
		return
	}

	db := config.GetDB()
	if err := db.Delete(&models.Item{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete item",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
