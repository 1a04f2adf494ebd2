package testutil

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/grange-pets/pet-market-api/config"
	"github.com/grange-pets/pet-market-api/middleware"
	"github.com/grange-pets/pet-market-api/models"
)

// TestConfig returns a minimal configuration suitable for handler tests.
func TestConfig() *config.Config {
	return &config.Config{
		DatabaseURL:          "sqlite::memory:",
		GoEnv:                "test",
		JWTSecret:            "test_secret",
		StripeWebhookSecret:  "whsec_test_secret",
		ClientOrigin:         "http://localhost:5173",
		OriginPostcode:       "LA11 7EZ",
		ServiceRadiusMiles:   15,
		DeliveryMinimumCents: 2000,
		MaxCartLines:         1,
	}
}

// WithAuthContext returns a middleware that stamps the request as already
// authenticated, the way RequireAuth would after verifying a cookie.
func WithAuthContext(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

// AuthCookie issues a real signed session token for the user, for tests that
// exercise the full cookie-verification path.
func AuthCookie(t *testing.T, cfg *config.Config, user *models.User) *http.Cookie {
	t.Helper()

	token, err := middleware.IssueToken(cfg, user)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}

	return &http.Cookie{
		Name:  middleware.AuthCookieName,
		Value: token,
		Path:  "/",
	}
}
