package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/grange-pets/pet-market-api/config"
	"github.com/grange-pets/pet-market-api/models"
	"github.com/grange-pets/pet-market-api/tests/testutil"
)

// setupTestDB opens an in-memory database with the full schema and installs
// it as the global handle.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testutil.RequireTestEnvironment(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Species{},
		&models.Item{},
		&models.Order{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	config.SetConfig(testutil.TestConfig())
	return db
}

// performJSON sends a JSON request through the router and decodes the
// response envelope.
func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	response := make(map[string]interface{})
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to decode response body %q: %v", w.Body.String(), err)
		}
	}
	return w, response
}

// errorCode digs the error code out of a failure envelope.
func errorCode(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

// createTestCustomer inserts a customer with a complete delivery address.
func createTestCustomer(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()

	user := models.User{
		Name:         "Test Customer",
		Email:        email,
		PasswordHash: "not-a-real-hash",
		AddressLine1: "1 Main Street",
		City:         "Grange-over-Sands",
		Postcode:     "LA11 6AB",
		Country:      "United Kingdom",
		Role:         "customer",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test customer: %v", err)
	}
	return user
}

// createTestCatalogue inserts one category, one species and returns them.
func createTestCatalogue(t *testing.T, db *gorm.DB) (models.Category, models.Species) {
	t.Helper()

	category := models.Category{Name: "Dry Food", Slug: "dry-food"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}

	species := models.Species{Slug: "dog", Label: "Dog", Icon: "🐶"}
	if err := db.Create(&species).Error; err != nil {
		t.Fatalf("Failed to create test species: %v", err)
	}

	return category, species
}

func init() {
	gin.SetMode(gin.TestMode)
	if os.Getenv("GO_ENV") == "" {
		_ = os.Setenv("GO_ENV", "test")
	}
}
