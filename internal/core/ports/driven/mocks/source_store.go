package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// MockSourceStore is a mock implementation of SourceStore for testing
type MockSourceStore struct {
	mu      sync.RWMutex
	sources map[string]*domain.Source

	// AnalysisLinks maps analysis ID to attached source IDs, used by
	// ListByAnalysis
	AnalysisLinks map[string][]string
}

// NewMockSourceStore creates a new MockSourceStore
func NewMockSourceStore() *MockSourceStore {
	return &MockSourceStore{
		sources:       make(map[string]*domain.Source),
		AnalysisLinks: make(map[string][]string),
	}
}

func (m *MockSourceStore) Save(ctx context.Context, source *domain.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[source.ID] = source
	return nil
}

func (m *MockSourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	source, ok := m.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return source, nil
}

func (m *MockSourceStore) GetByHash(ctx context.Context, workspaceID, fileHash string) (*domain.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, source := range m.sources {
		if source.WorkspaceID == workspaceID && source.FileHash == fileHash {
			return source, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSourceStore) List(ctx context.Context, workspaceID string) ([]*domain.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Source
	for _, source := range m.sources {
		if source.WorkspaceID == workspaceID {
			result = append(result, source)
		}
	}
	return result, nil
}

func (m *MockSourceStore) ListByAnalysis(ctx context.Context, analysisID string) ([]*domain.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Source
	for _, sourceID := range m.AnalysisLinks[analysisID] {
		if source, ok := m.sources[sourceID]; ok {
			result = append(result, source)
		}
	}
	return result, nil
}

func (m *MockSourceStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.sources, id)
	return nil
}

func (m *MockSourceStore) PurgeContent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	source, ok := m.sources[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	source.Content = ""
	source.ContentPurged = true
	source.PurgedAt = &now
	return nil
}

func (m *MockSourceStore) PurgeWorkspaceContent(ctx context.Context, workspaceID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	purged := 0
	for _, source := range m.sources {
		if source.WorkspaceID == workspaceID && !source.ContentPurged {
			source.Content = ""
			source.ContentPurged = true
			source.PurgedAt = &now
			purged++
		}
	}
	return purged, nil
}

// Helper methods for testing

func (m *MockSourceStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = make(map[string]*domain.Source)
	m.AnalysisLinks = make(map[string][]string)
}

func (m *MockSourceStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sources)
}
