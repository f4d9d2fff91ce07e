package driven

import (
	"context"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// PromptStore handles prompt pack persistence (PostgreSQL)
type PromptStore interface {
	// Save creates or updates a prompt pack
	Save(ctx context.Context, pack *domain.PromptPack) error

	// Get retrieves a prompt pack by ID
	Get(ctx context.Context, id string) (*domain.PromptPack, error)

	// GetByVersionTag retrieves a prompt pack by version tag
	GetByVersionTag(ctx context.Context, versionTag string) (*domain.PromptPack, error)

	// GetActiveForUseCase retrieves the active pack for a use case
	GetActiveForUseCase(ctx context.Context, useCase string) (*domain.PromptPack, error)

	// List retrieves all prompt packs
	List(ctx context.Context) ([]*domain.PromptPack, error)

	// ListByUseCase retrieves all prompt packs for a use case
	ListByUseCase(ctx context.Context, useCase string) ([]*domain.PromptPack, error)

	// Delete deletes a prompt pack
	Delete(ctx context.Context, id string) error
}
