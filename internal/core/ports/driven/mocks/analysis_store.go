package mocks

import (
	"context"
	"sync"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// MockAnalysisStore is a mock implementation of AnalysisStore for testing
type MockAnalysisStore struct {
	mu       sync.RWMutex
	analyses map[string]*domain.Analysis
	links    map[string][]*domain.AnalysisSource
}

// NewMockAnalysisStore creates a new MockAnalysisStore
func NewMockAnalysisStore() *MockAnalysisStore {
	return &MockAnalysisStore{
		analyses: make(map[string]*domain.Analysis),
		links:    make(map[string][]*domain.AnalysisSource),
	}
}

func (m *MockAnalysisStore) Save(ctx context.Context, analysis *domain.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses[analysis.ID] = analysis
	return nil
}

func (m *MockAnalysisStore) Get(ctx context.Context, id string) (*domain.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	analysis, ok := m.analyses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return analysis, nil
}

func (m *MockAnalysisStore) List(ctx context.Context, workspaceID string) ([]*domain.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Analysis
	for _, analysis := range m.analyses {
		if analysis.WorkspaceID == workspaceID {
			result = append(result, analysis)
		}
	}
	return result, nil
}

func (m *MockAnalysisStore) ListByStatus(ctx context.Context, workspaceID string, status domain.AnalysisStatus) ([]*domain.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Analysis
	for _, analysis := range m.analyses {
		if analysis.WorkspaceID == workspaceID && analysis.Status == status {
			result = append(result, analysis)
		}
	}
	return result, nil
}

func (m *MockAnalysisStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.analyses[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.analyses, id)
	delete(m.links, id)
	return nil
}

func (m *MockAnalysisStore) AttachSource(ctx context.Context, link *domain.AnalysisSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.links[link.AnalysisID] {
		if existing.SourceID == link.SourceID {
			return domain.ErrAlreadyExists
		}
	}
	m.links[link.AnalysisID] = append(m.links[link.AnalysisID], link)
	return nil
}

func (m *MockAnalysisStore) DetachSource(ctx context.Context, analysisID, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	links := m.links[analysisID]
	for i, link := range links {
		if link.SourceID == sourceID {
			m.links[analysisID] = append(links[:i], links[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockAnalysisStore) ListSourceLinks(ctx context.Context, analysisID string) ([]*domain.AnalysisSource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.links[analysisID], nil
}

// Helper methods for testing

func (m *MockAnalysisStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses = make(map[string]*domain.Analysis)
	m.links = make(map[string][]*domain.AnalysisSource)
}

func (m *MockAnalysisStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.analyses)
}
