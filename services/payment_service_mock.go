package services

import (
	"context"
	"errors"
	"sync"
)

// MockPaymentService is a mock implementation of PaymentService for testing
type MockPaymentService struct {
	mu sync.RWMutex

	// Sessions records every session creation request, in order.
	Sessions []CheckoutSessionInput

	// RedirectURL is returned on success.
	RedirectURL string

	// Fail makes session creation behave like an unreachable provider.
	Fail bool
}

// NewMockPaymentService creates a new mock payment service
func NewMockPaymentService() *MockPaymentService {
	return &MockPaymentService{
		RedirectURL: "https://checkout.example.test/session/mock",
	}
}

// SetAsMockForTesting sets this mock as the global payment service instance for testing
func (m *MockPaymentService) SetAsMockForTesting() {
	SetPaymentService(m)
}

// CreateCheckoutSession records the request and returns the configured URL.
func (m *MockPaymentService) CreateCheckoutSession(_ context.Context, input CheckoutSessionInput) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return "", errors.New("mock payment service: provider unavailable")
	}

	m.Sessions = append(m.Sessions, input)
	return m.RedirectURL, nil
}

// SessionCount returns how many sessions were created.
func (m *MockPaymentService) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Sessions)
}
