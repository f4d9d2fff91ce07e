package mocks

import (
	"context"
	"sync"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// MockReadinessStore is a mock implementation of ReadinessStore for testing
type MockReadinessStore struct {
	mu        sync.RWMutex
	checks    map[string][]*domain.CheckRecord
	snapshots map[string][]*domain.RigorSnapshot
}

// NewMockReadinessStore creates a new MockReadinessStore
func NewMockReadinessStore() *MockReadinessStore {
	return &MockReadinessStore{
		checks:    make(map[string][]*domain.CheckRecord),
		snapshots: make(map[string][]*domain.RigorSnapshot),
	}
}

func (m *MockReadinessStore) SaveChecks(ctx context.Context, analysisID string, checks []*domain.CheckRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[analysisID] = checks
	return nil
}

func (m *MockReadinessStore) ListChecks(ctx context.Context, analysisID string) ([]*domain.CheckRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.checks[analysisID], nil
}

func (m *MockReadinessStore) SaveSnapshot(ctx context.Context, snapshot *domain.RigorSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.AnalysisID] = append(m.snapshots[snapshot.AnalysisID], snapshot)
	return nil
}

func (m *MockReadinessStore) LatestSnapshot(ctx context.Context, analysisID string) (*domain.RigorSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshots := m.snapshots[analysisID]
	if len(snapshots) == 0 {
		return nil, domain.ErrNotFound
	}
	return snapshots[len(snapshots)-1], nil
}

func (m *MockReadinessStore) ListSnapshots(ctx context.Context, analysisID string, limit int) ([]*domain.RigorSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshots := m.snapshots[analysisID]
	// Newest first
	var result []*domain.RigorSnapshot
	for i := len(snapshots) - 1; i >= 0; i-- {
		result = append(result, snapshots[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Helper methods for testing

func (m *MockReadinessStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = make(map[string][]*domain.CheckRecord)
	m.snapshots = make(map[string][]*domain.RigorSnapshot)
}

func (m *MockReadinessStore) SnapshotCount(analysisID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots[analysisID])
}
