package mocks

import (
	"context"
	"sync"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// MockWorkspaceStore is a mock implementation of WorkspaceStore for testing
type MockWorkspaceStore struct {
	mu         sync.RWMutex
	workspaces map[string]*domain.Workspace
	byName     map[string]*domain.Workspace

	SourceCounts   map[string]int
	AnalysisCounts map[string]int
}

// NewMockWorkspaceStore creates a new MockWorkspaceStore
func NewMockWorkspaceStore() *MockWorkspaceStore {
	return &MockWorkspaceStore{
		workspaces:     make(map[string]*domain.Workspace),
		byName:         make(map[string]*domain.Workspace),
		SourceCounts:   make(map[string]int),
		AnalysisCounts: make(map[string]int),
	}
}

func (m *MockWorkspaceStore) Save(ctx context.Context, workspace *domain.Workspace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workspaces[workspace.ID] = workspace
	m.byName[workspace.Name] = workspace
	return nil
}

func (m *MockWorkspaceStore) Get(ctx context.Context, id string) (*domain.Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	workspace, ok := m.workspaces[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return workspace, nil
}

func (m *MockWorkspaceStore) GetByName(ctx context.Context, name string) (*domain.Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	workspace, ok := m.byName[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return workspace, nil
}

func (m *MockWorkspaceStore) List(ctx context.Context) ([]*domain.Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Workspace
	for _, workspace := range m.workspaces {
		result = append(result, workspace)
	}
	return result, nil
}

func (m *MockWorkspaceStore) ListActive(ctx context.Context) ([]*domain.Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Workspace
	for _, workspace := range m.workspaces {
		if workspace.Active {
			result = append(result, workspace)
		}
	}
	return result, nil
}

func (m *MockWorkspaceStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	workspace, ok := m.workspaces[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.byName, workspace.Name)
	delete(m.workspaces, id)
	return nil
}

func (m *MockWorkspaceStore) CountSources(ctx context.Context, id string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.SourceCounts[id], nil
}

func (m *MockWorkspaceStore) CountAnalyses(ctx context.Context, id string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.AnalysisCounts[id], nil
}

// Helper methods for testing

func (m *MockWorkspaceStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workspaces = make(map[string]*domain.Workspace)
	m.byName = make(map[string]*domain.Workspace)
	m.SourceCounts = make(map[string]int)
	m.AnalysisCounts = make(map[string]int)
}

func (m *MockWorkspaceStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workspaces)
}
