package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/grange-pets/pet-market-api/models"
)

func newAdminRouter() *gin.Engine {
	// Admin middleware is exercised separately; these tests hit the
	// handlers directly.
	router := gin.New()
	router.POST("/api/admin/categories", CreateCategory)
	router.DELETE("/api/admin/categories/:id", DeleteCategory)
	router.POST("/api/admin/species", CreateSpecies)
	router.DELETE("/api/admin/species/:id", DeleteSpecies)
	router.POST("/api/admin/items", UpsertItem)
	router.DELETE("/api/admin/items/:id", DeleteItem)
	return router
}

func TestCreateCategory(t *testing.T) {
	db := setupTestDB(t)
	router := newAdminRouter()

	db.Create(&models.Category{Name: "Toys", Slug: "toys"})

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:           "Successfully create category with derived slug",
			requestBody:    map[string]interface{}{"name": "  Dry   Food "},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "Dry   Food", data["name"])
				assert.Equal(t, "dry-food", data["slug"])
			},
		},
		{
			name:           "Reject blank name",
			requestBody:    map[string]interface{}{"name": "   "},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Reject duplicate category",
			requestBody:    map[string]interface{}{"name": "Toys"},
			expectedStatus: http.StatusConflict,
			expectedError:  "CATEGORY_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performJSON(t, router, http.MethodPost, "/api/admin/categories", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorCode(response))
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestDeleteCategoryReferentialIntegrity(t *testing.T) {
	db := setupTestDB(t)
	router := newAdminRouter()

	used := models.Category{Name: "Dry Food", Slug: "dry-food"}
	empty := models.Category{Name: "Toys", Slug: "toys"}
	db.Create(&used)
	db.Create(&empty)
	db.Create(&models.Item{Name: "Beef Kibble", CategoryID: used.ID, PriceCents: 1250})

	t.Run("Refuse to delete a category with items", func(t *testing.T) {
		w, response := performJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/admin/categories/%d", used.ID), nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CATEGORY_IN_USE", errorCode(response))

		var count int64
		db.Model(&models.Category{}).Count(&count)
		assert.Equal(t, int64(2), count)
	})

	t.Run("Delete a category with no items", func(t *testing.T) {
		w, _ := performJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/admin/categories/%d", empty.ID), nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var count int64
		db.Model(&models.Category{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Reject malformed id", func(t *testing.T) {
		w, response := performJSON(t, router, http.MethodDelete, "/api/admin/categories/banana", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_ID", errorCode(response))
	})
}

func TestCreateSpecies(t *testing.T) {
	setupTestDB(t)
	router := newAdminRouter()

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:           "Slug defaults from the label",
			requestBody:    map[string]interface{}{"label": "Small Animal", "icon": "🐹"},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "small-animal", data["slug"])
				assert.Equal(t, "Small Animal", data["label"])
			},
		},
		{
			name:           "Explicit slug is normalized",
			requestBody:    map[string]interface{}{"label": "Reptile", "slug": "Cold  Blooded"},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "cold-blooded", data["slug"])
			},
		},
		{
			name:           "Reject missing label",
			requestBody:    map[string]interface{}{"slug": "dog"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Reject duplicate species",
			requestBody:    map[string]interface{}{"label": "Small Animal"},
			expectedStatus: http.StatusConflict,
			expectedError:  "SPECIES_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performJSON(t, router, http.MethodPost, "/api/admin/species", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorCode(response))
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestDeleteSpeciesReferentialIntegrity(t *testing.T) {
	db := setupTestDB(t)
	router := newAdminRouter()

	category, dog := createTestCatalogue(t, db)
	cat := models.Species{Slug: "cat", Label: "Cat"}
	db.Create(&cat)

	// Items reference species by slug
	db.Create(&models.Item{Name: "Beef Kibble", CategoryID: category.ID, Species: dog.Slug, PriceCents: 1250})

	t.Run("Refuse to delete a species with items", func(t *testing.T) {
		w, response := performJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/admin/species/%d", dog.ID), nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "SPECIES_IN_USE", errorCode(response))
	})

	t.Run("Delete a species with no items", func(t *testing.T) {
		w, _ := performJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/admin/species/%d", cat.ID), nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Unknown species id is 404", func(t *testing.T) {
		w, response := performJSON(t, router, http.MethodDelete, "/api/admin/species/9999", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "SPECIES_NOT_FOUND", errorCode(response))
	})
}

func TestUpsertItem(t *testing.T) {
	db := setupTestDB(t)
	router := newAdminRouter()

	category, _ := createTestCatalogue(t, db)

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name: "Create item with integer pence price",
			requestBody: map[string]interface{}{
				"name":        "Beef Kibble",
				"category_id": category.ID,
				"species":     "Dog",
				"price_cents": 1250,
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, float64(1250), data["price_cents"])
				assert.Equal(t, "dog", data["species"], "species slug should be normalized")
				assert.Equal(t, true, data["in_stock"], "in_stock should default to true")
			},
		},
		{
			name: "Reject negative price",
			requestBody: map[string]interface{}{
				"name":        "Bad Price",
				"category_id": category.ID,
				"price_cents": -1,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_PRICE",
		},
		{
			name: "Reject missing price",
			requestBody: map[string]interface{}{
				"name":        "No Price",
				"category_id": category.ID,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Reject missing category",
			requestBody: map[string]interface{}{
				"name":        "No Category",
				"price_cents": 500,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Reject nonexistent category reference",
			requestBody: map[string]interface{}{
				"name":        "Phantom Category",
				"category_id": 9999,
				"price_cents": 500,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "CATEGORY_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performJSON(t, router, http.MethodPost, "/api/admin/items", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorCode(response))
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestUpsertItemUpdatesExisting(t *testing.T) {
	db := setupTestDB(t)
	router := newAdminRouter()

	category, _ := createTestCatalogue(t, db)
	item := models.Item{Name: "Old Name", CategoryID: category.ID, PriceCents: 100, InStock: true}
	db.Create(&item)

	w, response := performJSON(t, router, http.MethodPost, "/api/admin/items", map[string]interface{}{
		"id":          item.ID,
		"name":        "New Name",
		"category_id": category.ID,
		"price_cents": 250,
		"in_stock":    false,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "New Name", data["name"])
	assert.Equal(t, float64(250), data["price_cents"])
	assert.Equal(t, false, data["in_stock"])

	var count int64
	db.Model(&models.Item{}).Count(&count)
	assert.Equal(t, int64(1), count, "update must not create a second row")
}

func TestUpsertItemUnknownIDIs404(t *testing.T) {
	db := setupTestDB(t)
	router := newAdminRouter()

	category, _ := createTestCatalogue(t, db)

	w, response := performJSON(t, router, http.MethodPost, "/api/admin/items", map[string]interface{}{
		"id":          9999,
		"name":        "Ghost",
		"category_id": category.ID,
		"price_cents": 100,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ITEM_NOT_FOUND", errorCode(response))
}

func TestDeleteItem(t *testing.T) {
	db := setupTestDB(t)
	router := newAdminRouter()

	category, _ := createTestCatalogue(t, db)
	item := models.Item{Name: "Beef Kibble", CategoryID: category.ID, PriceCents: 1250}
	db.Create(&item)

	w, _ := performJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/admin/items/%d", item.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Item{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
