package mocks

import (
	"context"
	"sync"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// Ensure MockConnector implements Connector
var _ driven.Connector = (*MockConnector)(nil)

// MockConnector is a mock implementation of Connector for testing
type MockConnector struct {
	mu sync.RWMutex

	ProviderType driven.ProviderType
	Files        map[string][]*driven.RemoteFile // Keyed by folder ID
	FileContent  map[string][]byte               // Keyed by external ID
	ConnErr      error
}

// NewMockConnector creates a new MockConnector
func NewMockConnector(providerType driven.ProviderType) *MockConnector {
	return &MockConnector{
		ProviderType: providerType,
		Files:        make(map[string][]*driven.RemoteFile),
		FileContent:  make(map[string][]byte),
	}
}

func (m *MockConnector) Type() driven.ProviderType {
	return m.ProviderType
}

func (m *MockConnector) ListFiles(ctx context.Context, folderID string) ([]*driven.RemoteFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ConnErr != nil {
		return nil, m.ConnErr
	}
	return m.Files[folderID], nil
}

func (m *MockConnector) FetchFile(ctx context.Context, externalID string) ([]byte, *driven.RemoteFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ConnErr != nil {
		return nil, nil, m.ConnErr
	}
	content, ok := m.FileContent[externalID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	for _, files := range m.Files {
		for _, file := range files {
			if file.ExternalID == externalID {
				return content, file, nil
			}
		}
	}
	return content, &driven.RemoteFile{ExternalID: externalID}, nil
}

func (m *MockConnector) TestConnection(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ConnErr
}

// AddFile registers a file with content under a folder
func (m *MockConnector) AddFile(folderID string, file *driven.RemoteFile, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[folderID] = append(m.Files[folderID], file)
	m.FileContent[file.ExternalID] = content
}
