package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/grange-pets/pet-market-api/config"
	"github.com/grange-pets/pet-market-api/models"
	"github.com/grange-pets/pet-market-api/services"
)

// StripeWebhook handles POST /api/stripe/webhook - the asynchronous payment
// confirmation. The raw body is verified against the endpoint secret before
// anything else happens; an invalid signature is rejected outright with no
// partial processing.
//
// This is the only code path that ever writes a "paid" order.
func StripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PAYLOAD",
				"message": "Could not read webhook payload",
			},
		})
		return
	}

	cfg := config.GetConfig()
	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), cfg.StripeWebhookSecret)
	if err != nil {
		log.Printf("Stripe signature verification failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SIGNATURE",
				"message": "Webhook signature verification failed",
			},
		})
		return
	}

	if event.Type == "checkout.session.completed" {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			log.Printf("Failed to decode checkout session from event %s: %v", event.ID, err)
		} else if err := recordPaidOrder(&session); err != nil {
			// Processing failures are logged, not returned: the provider
			// retrying the same broken event would not fix them.
			log.Printf("Webhook processing error for session %s: %v", session.ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"received": true,
	})
}

// recordPaidOrder turns a completed checkout session into exactly one paid
// order. Redeliveries of the same session are absorbed by the unique index
// on the session id.
func recordPaidOrder(session *stripe.CheckoutSession) error {
	metadata, err := services.DecodeCheckoutMetadata(session.Metadata)
	if err != nil {
		return err
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, metadata.UserID).Error; err != nil {
		// Fatal inconsistency: a paid session for an account we don't have
		return err
	}

	sessionID := session.ID
	order := models.Order{
		UserID:          user.ID,
		DeliveryMethod:  metadata.DeliveryMethod,
		TotalCents:      session.AmountTotal, // provider's record of what was charged
		Status:          models.OrderStatusPaid,
		StripeSessionID: &sessionID,
		Items:           metadata.Lines,
		Address:         user.Snapshot(),
	}
	if err := order.EncodeSnapshots(); err != nil {
		return err
	}

	if err := db.Create(&order).Error; err != nil {
		if isDuplicateKeyError(err) {
			// Redelivered event; the order already exists
			log.Printf("Duplicate webhook delivery for session %s, skipping", sessionID)
			return nil
		}
		return err
	}

	// Notification is observability, not correctness: a failure here must
	// never roll back the order.
	mail := services.GetMailService()
	if mail != nil {
		notification := services.OrderNotification{
			OrderID:        order.ID,
			CustomerName:   user.Name,
			CustomerEmail:  user.Email,
			DeliveryMethod: metadata.DeliveryMethod,
			Address:        order.Address,
			Lines:          metadata.Lines,
			TotalCents:     order.TotalCents,
		}
		if err := mail.SendOrderNotification(notification); err != nil {
			log.Printf("Failed to send notification for order %d: %v", order.ID, err)
		}
	}

	log.Printf("Webhook order saved: %d (session %s)", order.ID, sessionID)
	return nil
}
