package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/grange-pets/pet-market-api/config"
	"github.com/grange-pets/pet-market-api/models"
)

// Metadata keys carried on a checkout session. The webhook reconstructs the
// whole order from these; the provider has no database access.
const (
	metadataUserID         = "user_id"
	metadataDeliveryMethod = "delivery_method"
	metadataItemsJSON      = "items_json"
)

// CheckoutSessionInput is everything the payment provider needs to host a
// checkout flow for an already-validated cart.
type CheckoutSessionInput struct {
	UserID         uint
	DeliveryMethod string
	Lines          []models.OrderLine
}

// PaymentService creates hosted payment sessions with the provider.
type PaymentService interface {
	// CreateCheckoutSession registers the session and returns the URL the
	// client should be redirected to.
	CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (string, error)
}

// StripePaymentService implements PaymentService against Stripe Checkout.
type StripePaymentService struct {
	clientOrigin string
}

var paymentServiceInstance PaymentService

// InitPaymentService initializes the Stripe-backed payment service.
func InitPaymentService(cfg *config.Config) PaymentService {
	stripe.Key = cfg.StripeSecretKey
	paymentServiceInstance = &StripePaymentService{
		clientOrigin: cfg.ClientOrigin,
	}
	return paymentServiceInstance
}

// GetPaymentService returns the initialized payment service instance
func GetPaymentService() PaymentService {
	return paymentServiceInstance
}

// SetPaymentService sets the payment service instance (primarily for testing)
func SetPaymentService(service PaymentService) {
	paymentServiceInstance = service
}

// CreateCheckoutSession builds a Stripe Checkout session from validated
// order lines. Unit amounts come from the catalogue snapshot, never from the
// client.
func (s *StripePaymentService) CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (string, error) {
	itemsJSON, err := json.Marshal(input.Lines)
	if err != nil {
		return "", fmt.Errorf("failed to encode order snapshot: %w", err)
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.Lines))
	for _, line := range input.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyGBP)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
				UnitAmount: stripe.Int64(line.PriceCents),
			},
			Quantity: stripe.Int64(int64(line.Qty)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(s.clientOrigin + "/success"),
		CancelURL:          stripe.String(s.clientOrigin + "/cancel"),
	}
	params.Context = ctx
	params.AddMetadata(metadataUserID, strconv.FormatUint(uint64(input.UserID), 10))
	params.AddMetadata(metadataDeliveryMethod, input.DeliveryMethod)
	params.AddMetadata(metadataItemsJSON, string(itemsJSON))

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return sess.URL, nil
}

// CheckoutMetadata is the decoded form of the opaque metadata a confirmation
// event carries back.
type CheckoutMetadata struct {
	UserID         uint
	DeliveryMethod string
	Lines          []models.OrderLine
}

// EncodeCheckoutMetadata builds the provider metadata map for a session.
// Exposed so mocks and tests produce the same wire shape as the real service.
func EncodeCheckoutMetadata(input CheckoutSessionInput) (map[string]string, error) {
	itemsJSON, err := json.Marshal(input.Lines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order snapshot: %w", err)
	}
	return map[string]string{
		metadataUserID:         strconv.FormatUint(uint64(input.UserID), 10),
		metadataDeliveryMethod: input.DeliveryMethod,
		metadataItemsJSON:      string(itemsJSON),
	}, nil
}

// DecodeCheckoutMetadata reverses EncodeCheckoutMetadata. It is the sole
// channel by which the webhook reconstructs order content.
func DecodeCheckoutMetadata(metadata map[string]string) (*CheckoutMetadata, error) {
	rawUserID, ok := metadata[metadataUserID]
	if !ok {
		return nil, fmt.Errorf("metadata missing %s", metadataUserID)
	}
	userID, err := strconv.ParseUint(rawUserID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s in metadata: %w", metadataUserID, err)
	}

	var lines []models.OrderLine
	if raw := metadata[metadataItemsJSON]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			return nil, fmt.Errorf("invalid %s in metadata: %w", metadataItemsJSON, err)
		}
	}

	return &CheckoutMetadata{
		UserID:         uint(userID),
		DeliveryMethod: metadata[metadataDeliveryMethod],
		Lines:          lines,
	}, nil
}
