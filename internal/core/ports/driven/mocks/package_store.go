package mocks

import (
	"context"
	"sync"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// MockPackageStore is a mock implementation of PackageStore for testing
type MockPackageStore struct {
	mu       sync.RWMutex
	packages map[string][]byte
}

// NewMockPackageStore creates a new MockPackageStore
func NewMockPackageStore() *MockPackageStore {
	return &MockPackageStore{
		packages: make(map[string][]byte),
	}
}

func (m *MockPackageStore) Save(ctx context.Context, analysisID string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packages[analysisID] = data
	return "/exports/" + analysisID + ".zip", nil
}

func (m *MockPackageStore) Load(ctx context.Context, analysisID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.packages[analysisID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (m *MockPackageStore) Delete(ctx context.Context, analysisID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.packages, analysisID)
	return nil
}

// Helper methods for testing

func (m *MockPackageStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.packages)
}
