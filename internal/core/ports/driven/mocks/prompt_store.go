package mocks

import (
	"context"
	"sync"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// MockPromptStore is a mock implementation of PromptStore for testing
type MockPromptStore struct {
	mu    sync.RWMutex
	packs map[string]*domain.PromptPack
	byTag map[string]*domain.PromptPack
}

// NewMockPromptStore creates a new MockPromptStore
func NewMockPromptStore() *MockPromptStore {
	return &MockPromptStore{
		packs: make(map[string]*domain.PromptPack),
		byTag: make(map[string]*domain.PromptPack),
	}
}

func (m *MockPromptStore) Save(ctx context.Context, pack *domain.PromptPack) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packs[pack.ID] = pack
	m.byTag[pack.VersionTag] = pack
	return nil
}

func (m *MockPromptStore) Get(ctx context.Context, id string) (*domain.PromptPack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pack, ok := m.packs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return pack, nil
}

func (m *MockPromptStore) GetByVersionTag(ctx context.Context, versionTag string) (*domain.PromptPack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pack, ok := m.byTag[versionTag]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return pack, nil
}

func (m *MockPromptStore) GetActiveForUseCase(ctx context.Context, useCase string) (*domain.PromptPack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, pack := range m.packs {
		if pack.UseCase == useCase && pack.Active {
			return pack, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPromptStore) List(ctx context.Context) ([]*domain.PromptPack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.PromptPack
	for _, pack := range m.packs {
		result = append(result, pack)
	}
	return result, nil
}

func (m *MockPromptStore) ListByUseCase(ctx context.Context, useCase string) ([]*domain.PromptPack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.PromptPack
	for _, pack := range m.packs {
		if pack.UseCase == useCase {
			result = append(result, pack)
		}
	}
	return result, nil
}

func (m *MockPromptStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pack, ok := m.packs[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.byTag, pack.VersionTag)
	delete(m.packs, id)
	return nil
}

// Helper methods for testing

func (m *MockPromptStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packs = make(map[string]*domain.PromptPack)
	m.byTag = make(map[string]*domain.PromptPack)
}

func (m *MockPromptStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.packs)
}
