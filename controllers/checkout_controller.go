package controllers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/grange-pets/pet-market-api/config"
	"github.com/grange-pets/pet-market-api/middleware"
	"github.com/grange-pets/pet-market-api/models"
	"github.com/grange-pets/pet-market-api/services"
)

// CheckoutRequest represents the request body for starting a checkout
type CheckoutRequest struct {
	Items          []CartLineRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryMethod string            `json:"delivery_method" binding:"required,oneof=collect deliver"`
}

// resolveCartLines re-reads every cart line from the catalogue by id.
// Client-supplied prices are never trusted; an unknown id fails the whole
// cart before anything is created.
func resolveCartLines(db *gorm.DB, requested []CartLineRequest) ([]models.OrderLine, error) {
	lines := make([]models.OrderLine, 0, len(requested))
	for _, line := range requested {
		var item models.Item
		if err := db.First(&item, line.ID).Error; err != nil {
			return nil, fmt.Errorf("item %d not found", line.ID)
		}
		lines = append(lines, models.OrderLine{
			ID:         item.ID,
			Name:       item.Name,
			PriceCents: item.PriceCents,
			Qty:        line.Qty,
		})
	}
	return lines, nil
}

// Checkout handles POST /api/checkout - validates the cart and creates a
// payment session with the provider. Preconditions run in a fixed order and
// the first failure wins; no session is created until every check passes.
//
// The real order record is written later by the webhook, from the metadata
// attached to the session here. Nothing the client caches locally is
// authoritative.
func Checkout(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req CheckoutRequest
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

	db := config.GetDB()
	cfg := config.GetConfig()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "Account not found",
			},
		})
		return
	}

	// Address must be complete before anything can be shipped or collected
	if !user.HasCompleteAddress() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ADDRESS_INCOMPLETE",
				"message": "Please add your full address before checking out",
			},
		})
		return
	}

	// Cart-shape business policy, not an architectural limit
	if len(req.Items) > cfg.MaxCartLines {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CART_SHAPE_NOT_SUPPORTED",
				"message": fmt.Sprintf("At most %d distinct item(s) can be checked out at a time", cfg.MaxCartLines),
			},
		})
		return
	}

	// Re-verify the saved postcode every time: it may predate the gate or
	// have gone stale. Lookup failures fail closed. An ineligible address
	// wins over any problem with the cart contents.
	geo := services.GetGeoService()
	eligible, err := geo.WithinServiceRadius(c.Request.Context(), user.Postcode)
	if err != nil {
		log.Printf("Postcode eligibility check failed for user %d: %v", user.ID, err)
	}
	if !eligible {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "OUTSIDE_SERVICE_AREA",
				"message": "Your address is outside our 15-mile service area",
			},
		})
		return
	}

	// Re-resolve every line against the catalogue before the delivery
	// minimum: the minimum applies to authoritative prices, not whatever
	// the client computed.
	lines, err := resolveCartLines(db, req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ITEM_NOT_FOUND",
				"message": err.Error(),
			},
		})
		return
	}

	total := models.TotalCents(lines)
	if req.DeliveryMethod == "deliver" && total < cfg.DeliveryMinimumCents {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DELIVERY_MINIMUM_NOT_MET",
				"message": fmt.Sprintf("Delivery requires a minimum order of £%.2f", float64(cfg.DeliveryMinimumCents)/100),
			},
		})
		return
	}

	payment := services.GetPaymentService()
	redirectURL, err := payment.CreateCheckoutSession(c.Request.Context(), services.CheckoutSessionInput{
		UserID:         user.ID,
		DeliveryMethod: req.DeliveryMethod,
		Lines:          lines,
	})
	if err != nil {
		log.Printf("Checkout session creation failed for user %d: %v", user.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PAYMENT_PROVIDER_ERROR",
				"message": "Could not start the payment flow, please try again",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"url": redirectURL,
		},
	})
}
