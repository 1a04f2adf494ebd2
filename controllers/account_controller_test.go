package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/grange-pets/pet-market-api/models"
	"github.com/grange-pets/pet-market-api/tests/testutil"
)

func newAccountRouter(userID uint) *gin.Engine {
	router := gin.New()
	router.Use(testutil.WithAuthContext(userID))
	router.GET("/api/account/me", GetMyAccount)
	router.PUT("/api/account/me", UpdateMyAccount)
	return router
}

func TestGetMyAccount(t *testing.T) {
	db := setupTestDB(t)
	user := createTestCustomer(t, db, "customer@example.com")
	router := newAccountRouter(user.ID)

	w, response := performJSON(t, router, http.MethodGet, "/api/account/me", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "customer@example.com", data["email"])
	assert.Equal(t, "LA11 6AB", data["postcode"])
	assert.NotContains(t, data, "password_hash")
}

func TestGetMyAccountMissingUser(t *testing.T) {
	setupTestDB(t)
	router := newAccountRouter(9999)

	w, response := performJSON(t, router, http.MethodGet, "/api/account/me", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", errorCode(response))
}

func TestUpdateMyAccount(t *testing.T) {
	db := setupTestDB(t)
	user := createTestCustomer(t, db, "customer@example.com")
	router := newAccountRouter(user.ID)

	w, response := performJSON(t, router, http.MethodPut, "/api/account/me", map[string]interface{}{
		"address_line1": "  42   Station   Road ",
		"city":          "Kendal",
		"postcode":      "LA9 4HE",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "42 Station Road", data["address_line1"], "whitespace runs are collapsed")
	assert.Equal(t, "Kendal", data["city"])
	assert.Equal(t, "LA9 4HE", data["postcode"])

	var reloaded models.User
	db.First(&reloaded, user.ID)
	assert.Equal(t, "42 Station Road", reloaded.AddressLine1)
	assert.Equal(t, "Test Customer", reloaded.Name, "untouched fields keep their values")
}

func TestUpdateMyAccountIgnoresProtectedFields(t *testing.T) {
	db := setupTestDB(t)
	user := createTestCustomer(t, db, "customer@example.com")
	router := newAccountRouter(user.ID)

	w, _ := performJSON(t, router, http.MethodPut, "/api/account/me", map[string]interface{}{
		"email": "takeover@example.com",
		"role":  "admin",
		"city":  "Kendal",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.User
	db.First(&reloaded, user.ID)
	assert.Equal(t, "customer@example.com", reloaded.Email)
	assert.Equal(t, "customer", reloaded.Role)
	assert.Equal(t, "Kendal", reloaded.City)
}

func TestUpdateMyAccountNoValidFields(t *testing.T) {
	db := setupTestDB(t)
	user := createTestCustomer(t, db, "customer@example.com")
	router := newAccountRouter(user.ID)

	tests := []struct {
		name        string
		requestBody map[string]interface{}
	}{
		{name: "Empty body", requestBody: map[string]interface{}{}},
		{name: "Only blank values", requestBody: map[string]interface{}{"city": "   ", "postcode": ""}},
		{name: "Only unknown fields", requestBody: map[string]interface{}{"email": "x@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performJSON(t, router, http.MethodPut, "/api/account/me", tt.requestBody)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "NO_VALID_FIELDS", errorCode(response))
		})
	}
}
