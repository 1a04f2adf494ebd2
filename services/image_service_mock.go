package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/grange-pets/pet-market-api/utils"
)

// MockImageService is a mock implementation of ImageService for testing
type MockImageService struct {
	mu sync.RWMutex

	storedKeys map[string]bool

	// Fail simulates a storage backend outage.
	Fail bool
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{
		storedKeys: make(map[string]bool),
	}
}

// SetAsMockForTesting sets this mock as the global image service instance for testing
func (m *MockImageService) SetAsMockForTesting() {
	SetImageService(m)
}

// UploadImage validates the file and records a deterministic key.
func (m *MockImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return "", errors.New("mock image service: storage unavailable")
	}

	key := fmt.Sprintf("items/mock_%s", fileHeader.Filename)
	m.storedKeys[key] = true
	return key, nil
}

// GetImageURL returns a stable fake URL for a stored key.
func (m *MockImageService) GetImageURL(imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.storedKeys[imageKey] {
		return "", fmt.Errorf("image not found: %s", imageKey)
	}
	return fmt.Sprintf("https://images.example.test/%s", imageKey), nil
}

// DeleteImage removes a stored key.
func (m *MockImageService) DeleteImage(imageKey string) error {
	if imageKey == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.storedKeys, imageKey)
	return nil
}
