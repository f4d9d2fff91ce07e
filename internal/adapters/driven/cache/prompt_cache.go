// Package cache provides read-through caching decorators for hot
// driven ports. Prompt packs are read on every analysis creation,
// scoring run, and export but change rarely, so they get an in-memory
// cache in front of PostgreSQL.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PromptStore = (*PromptCache)(nil)

// Cache key prefixes
const (
	idPrefix      = "id:"
	versionPrefix = "version:"
	activePrefix  = "active:"
)

// PromptCache decorates a PromptStore with a read-through cache.
// Writes and deletes flush the whole cache; pack mutations are rare
// enough that precision invalidation is not worth the bookkeeping.
type PromptCache struct {
	store driven.PromptStore
	cache *gocache.Cache
}

// NewPromptCache wraps a PromptStore with caching
func NewPromptCache(store driven.PromptStore, ttl time.Duration) *PromptCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PromptCache{
		store: store,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Save writes through and flushes the cache
func (c *PromptCache) Save(ctx context.Context, pack *domain.PromptPack) error {
	if err := c.store.Save(ctx, pack); err != nil {
		return err
	}
	c.cache.Flush()
	return nil
}

// Get retrieves a prompt pack by ID
func (c *PromptCache) Get(ctx context.Context, id string) (*domain.PromptPack, error) {
	if cached, ok := c.cache.Get(idPrefix + id); ok {
		return cached.(*domain.PromptPack), nil
	}

	pack, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(idPrefix+id, pack)
	return pack, nil
}

// GetByVersionTag retrieves a prompt pack by version tag
func (c *PromptCache) GetByVersionTag(ctx context.Context, versionTag string) (*domain.PromptPack, error) {
	if cached, ok := c.cache.Get(versionPrefix + versionTag); ok {
		return cached.(*domain.PromptPack), nil
	}

	pack, err := c.store.GetByVersionTag(ctx, versionTag)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(versionPrefix+versionTag, pack)
	return pack, nil
}

// GetActiveForUseCase retrieves the active pack for a use case
func (c *PromptCache) GetActiveForUseCase(ctx context.Context, useCase string) (*domain.PromptPack, error) {
	if cached, ok := c.cache.Get(activePrefix + useCase); ok {
		return cached.(*domain.PromptPack), nil
	}

	pack, err := c.store.GetActiveForUseCase(ctx, useCase)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(activePrefix+useCase, pack)
	return pack, nil
}

// List always hits the backing store; listings are admin operations
func (c *PromptCache) List(ctx context.Context) ([]*domain.PromptPack, error) {
	return c.store.List(ctx)
}

// ListByUseCase always hits the backing store
func (c *PromptCache) ListByUseCase(ctx context.Context, useCase string) ([]*domain.PromptPack, error) {
	return c.store.ListByUseCase(ctx, useCase)
}

// Delete removes the pack and flushes the cache
func (c *PromptCache) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	c.cache.Flush()
	return nil
}
