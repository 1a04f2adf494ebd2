package services

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// MockGeoService is a mock implementation of GeoService for testing
type MockGeoService struct {
	mu sync.RWMutex

	// EligiblePostcodes maps normalized postcodes to eligibility. Postcodes
	// not in the map are treated as unknown (lookup failure, fail closed).
	EligiblePostcodes map[string]bool

	// FailLookups makes every call behave like an unreachable directory.
	FailLookups bool

	// Checked records every postcode the service was asked about.
	Checked []string
}

// NewMockGeoService creates a new mock geo service
func NewMockGeoService() *MockGeoService {
	return &MockGeoService{
		EligiblePostcodes: make(map[string]bool),
	}
}

// SetAsMockForTesting sets this mock as the global geo service instance for testing
func (m *MockGeoService) SetAsMockForTesting() {
	SetGeoService(m)
}

// AllowPostcode marks a postcode as inside the service radius.
func (m *MockGeoService) AllowPostcode(postcode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EligiblePostcodes[normalizePostcode(postcode)] = true
}

// DenyPostcode marks a postcode as outside the service radius.
func (m *MockGeoService) DenyPostcode(postcode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EligiblePostcodes[normalizePostcode(postcode)] = false
}

// WithinServiceRadius simulates the eligibility check.
func (m *MockGeoService) WithinServiceRadius(_ context.Context, postcode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Checked = append(m.Checked, postcode)

	if m.FailLookups {
		return false, errors.New("mock geo service: lookup unavailable")
	}

	eligible, known := m.EligiblePostcodes[normalizePostcode(postcode)]
	if !known {
		return false, errors.New("mock geo service: postcode not found")
	}
	return eligible, nil
}

func normalizePostcode(postcode string) string {
	return strings.ToUpper(strings.ReplaceAll(postcode, " ", ""))
}
