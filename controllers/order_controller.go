package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/grange-pets/pet-market-api/config"
	"github.com/grange-pets/pet-market-api/middleware"
	"github.com/grange-pets/pet-market-api/models"
)

// CartLineRequest is one client-submitted cart line. Only the item id and
// quantity are trusted; prices always come from the catalogue.
type CartLineRequest struct {
	ID  uint `json:"id" binding:"required"`
	Qty int  `json:"qty" binding:"required,gt=0"`
}

// CreateOrderRequest represents the request body for placing a manual
// (unpaid) order. The client can only ever request "placed"; "paid" is
// reserved for the payment webhook.
type CreateOrderRequest struct {
	Items          []CartLineRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryMethod string            `json:"delivery_method" binding:"omitempty,oneof=collect deliver"`
}

// ListMyOrders handles GET /api/orders - the caller's orders, newest first.
func ListMyOrders(c *gin.Context) {
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

	db := config.GetDB()
	var orders []models.Order
	if err := db.Where("user_id = ?", userID).Order("id DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load orders",
			},
		})
		return
	}

	for i := range orders {
		if err := orders[i].DecodeSnapshots(); err != nil {
			log.Printf("Failed to decode snapshots for order %d: %v", orders[i].ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// CreateOrder handles POST /api/orders - records a "placed" (unpaid) order.
// Item names and prices are snapshotted from the catalogue server-side, and
// the address snapshot comes from the account, so nothing the client sends
// can tamper with either.
func CreateOrder(c *gin.Context) {
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

	var req CreateOrderRequest
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

	deliveryMethod := req.DeliveryMethod
	if deliveryMethod == "" {
		deliveryMethod = "collect"
	}

	db := config.GetDB()
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

	order := models.Order{
		UserID:         user.ID,
		DeliveryMethod: deliveryMethod,
		TotalCents:     models.TotalCents(lines),
		Status:         models.OrderStatusPlaced,
		Items:          lines,
		Address:        user.Snapshot(),
	}
	if err := order.EncodeSnapshots(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SNAPSHOT_ERROR",
				"message": "Failed to build order snapshot",
			},
		})
		return
	}

	if err := db.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// CancelOrder handles POST /api/orders/:id/cancel. Only "placed" orders can
// be cancelled; a paid order was charged and cannot be undone through this
// path. Cancelling twice is a no-op success.
func CancelOrder(c *gin.Context) {
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

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid order ID",
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	switch order.Status {
	case models.OrderStatusCancelled:
		// Idempotent: already cancelled
	case models.OrderStatusPlaced:
		if err := db.Model(&order).Update("status", models.OrderStatusCancelled).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to cancel order",
				},
			})
			return
		}
	default:
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_CANCELLABLE",
				"message": "Only placed orders can be cancelled",
			},
		})
		return
	}

	order.Status = models.OrderStatusCancelled
	if err := order.DecodeSnapshots(); err != nil {
		log.Printf("Failed to decode snapshots for order %d: %v", order.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
