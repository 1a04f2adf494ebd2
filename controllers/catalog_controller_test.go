package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/grange-pets/pet-market-api/models"
)

func newCatalogRouter() *gin.Engine {
	router := gin.New()
	router.GET("/api/categories", ListCategories)
	router.GET("/api/species", ListSpecies)
	router.GET("/api/items", ListItems)
	return router
}

func TestListCategoriesOrdering(t *testing.T) {
	db := setupTestDB(t)
	router := newCatalogRouter()

	db.Create(&models.Category{Name: "Toys", Slug: "toys"})
	db.Create(&models.Category{Name: "Dry Food", Slug: "dry-food"})

	w, response := performJSON(t, router, http.MethodGet, "/api/categories", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].([]interface{})
	assert.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "Dry Food", first["name"], "categories should be ordered by name")
}

func TestListSpecies(t *testing.T) {
	db := setupTestDB(t)
	router := newCatalogRouter()

	db.Create(&models.Species{Slug: "dog", Label: "Dog"})
	db.Create(&models.Species{Slug: "cat", Label: "Cat"})

	w, response := performJSON(t, router, http.MethodGet, "/api/species", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].([]interface{})
	assert.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "dog", first["slug"], "species should be ordered by id")
}

func TestListItems(t *testing.T) {
	db := setupTestDB(t)
	router := newCatalogRouter()

	food := models.Category{Name: "Dry Food", Slug: "dry-food"}
	toys := models.Category{Name: "Toys", Slug: "toys"}
	db.Create(&food)
	db.Create(&toys)

	db.Create(&models.Item{Name: "Beef Kibble", CategoryID: food.ID, Species: "dog", PriceCents: 1250})
	db.Create(&models.Item{Name: "Salmon Kibble", CategoryID: food.ID, Species: "cat", PriceCents: 1400})
	db.Create(&models.Item{Name: "Rope Toy", CategoryID: toys.ID, Species: "dog", PriceCents: 450})

	tests := []struct {
		name          string
		query         string
		expectedNames []string
	}{
		{
			name:          "No filters returns everything newest first",
			query:         "",
			expectedNames: []string{"Rope Toy", "Salmon Kibble", "Beef Kibble"},
		},
		{
			name:          "Species filter is case-insensitive",
			query:         "?species=DOG",
			expectedNames: []string{"Rope Toy", "Beef Kibble"},
		},
		{
			name:          "Category slug filter",
			query:         "?category=dry-food",
			expectedNames: []string{"Salmon Kibble", "Beef Kibble"},
		},
		{
			name:          "Unknown category slug yields empty result, not an error",
			query:         "?category=ancient-slug",
			expectedNames: []string{},
		},
		{
			name:          "Name search",
			query:         "?q=Kibble",
			expectedNames: []string{"Salmon Kibble", "Beef Kibble"},
		},
		{
			name:          "Filters are combined",
			query:         "?species=dog&category=dry-food&q=Kibble",
			expectedNames: []string{"Beef Kibble"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performJSON(t, router, http.MethodGet, "/api/items"+tt.query, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, response["success"].(bool))

			data := response["data"].([]interface{})
			names := make([]string, 0, len(data))
			for _, row := range data {
				names = append(names, row.(map[string]interface{})["name"].(string))
			}
			assert.Equal(t, tt.expectedNames, names)
		})
	}
}

func TestListItemsIncludesCategoryName(t *testing.T) {
	db := setupTestDB(t)
	router := newCatalogRouter()

	food := models.Category{Name: "Dry Food", Slug: "dry-food"}
	db.Create(&food)
	db.Create(&models.Item{Name: "Beef Kibble", CategoryID: food.ID, Species: "dog", PriceCents: 1250})

	w, response := performJSON(t, router, http.MethodGet, "/api/items", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)
	row := data[0].(map[string]interface{})
	assert.Equal(t, "Dry Food", row["category"])
	assert.Equal(t, float64(1250), row["price_cents"])
}

func TestListItemsPriceStaysInteger(t *testing.T) {
	db := setupTestDB(t)
	router := newCatalogRouter()

	food := models.Category{Name: "Dry Food", Slug: "dry-food"}
	db.Create(&food)
	db.Create(&models.Item{Name: "Treats", CategoryID: food.ID, PriceCents: 199})

	w, _ := performJSON(t, router, http.MethodGet, "/api/items", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	// 199 pence, not 1.99 of anything
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`"price_cents":%d`, 199))
}
