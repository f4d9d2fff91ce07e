package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// Ensure MockIntegrationStore implements IntegrationStore
var _ driven.IntegrationStore = (*MockIntegrationStore)(nil)

// MockIntegrationStore is a mock implementation of IntegrationStore for testing
type MockIntegrationStore struct {
	mu           sync.RWMutex
	integrations map[string]*domain.Integration
	jobs         map[string][]*domain.SyncJob // Keyed by integration ID

	SaveErr error
}

// NewMockIntegrationStore creates a new MockIntegrationStore
func NewMockIntegrationStore() *MockIntegrationStore {
	return &MockIntegrationStore{
		integrations: make(map[string]*domain.Integration),
		jobs:         make(map[string][]*domain.SyncJob),
	}
}

func (m *MockIntegrationStore) Save(ctx context.Context, integration *domain.Integration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.integrations[integration.ID] = integration
	return nil
}

func (m *MockIntegrationStore) Get(ctx context.Context, id string) (*domain.Integration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	integration, ok := m.integrations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return integration, nil
}

func (m *MockIntegrationStore) List(ctx context.Context, workspaceID string) ([]*domain.Integration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Integration
	for _, integration := range m.integrations {
		if workspaceID != "" && integration.WorkspaceID != workspaceID {
			continue
		}
		result = append(result, integration)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *MockIntegrationStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.integrations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.integrations, id)
	delete(m.jobs, id)
	return nil
}

func (m *MockIntegrationStore) SaveSyncJob(ctx context.Context, job *domain.SyncJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := m.jobs[job.IntegrationID]
	for i, j := range existing {
		if j.ID == job.ID {
			existing[i] = job
			return nil
		}
	}
	m.jobs[job.IntegrationID] = append(existing, job)
	return nil
}

func (m *MockIntegrationStore) ListSyncJobs(ctx context.Context, integrationID string, limit int) ([]*domain.SyncJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := m.jobs[integrationID]
	var result []*domain.SyncJob
	for i := len(jobs) - 1; i >= 0; i-- {
		result = append(result, jobs[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Helper methods for testing

func (m *MockIntegrationStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.integrations = make(map[string]*domain.Integration)
	m.jobs = make(map[string][]*domain.SyncJob)
}
