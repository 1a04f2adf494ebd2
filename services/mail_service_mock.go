package services

import (
	"errors"
	"sync"
)

// MockMailService is a mock implementation of MailService for testing
type MockMailService struct {
	mu sync.RWMutex

	// Sent records every notification, in order.
	Sent []OrderNotification

	// Fail simulates an unreachable SMTP server.
	Fail bool
}

// NewMockMailService creates a new mock mail service
func NewMockMailService() *MockMailService {
	return &MockMailService{}
}

// SetAsMockForTesting sets this mock as the global mail service instance for testing
func (m *MockMailService) SetAsMockForTesting() {
	SetMailService(m)
}

// SendOrderNotification records the notification.
func (m *MockMailService) SendOrderNotification(n OrderNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return errors.New("mock mail service: smtp unavailable")
	}

	m.Sent = append(m.Sent, n)
	return nil
}

// SentCount returns how many notifications were delivered.
func (m *MockMailService) SentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Sent)
}
