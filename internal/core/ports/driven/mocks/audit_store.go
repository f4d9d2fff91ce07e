package mocks

import (
	"context"
	"sync"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// MockAuditStore is a mock implementation of AuditStore for testing
type MockAuditStore struct {
	mu      sync.RWMutex
	entries []*domain.AuditEntry
}

// NewMockAuditStore creates a new MockAuditStore
func NewMockAuditStore() *MockAuditStore {
	return &MockAuditStore{}
}

func (m *MockAuditStore) Record(ctx context.Context, entry *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockAuditStore) ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.AuditEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		entry := m.entries[i]
		if entry.EntityType == entityType && entry.EntityID == entityID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (m *MockAuditStore) ListRecent(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.AuditEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		result = append(result, m.entries[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Helper methods for testing

func (m *MockAuditStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
}

func (m *MockAuditStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Entries returns a copy of all recorded entries in order
func (m *MockAuditStore) Entries() []*domain.AuditEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.AuditEntry, len(m.entries))
	copy(result, m.entries)
	return result
}
