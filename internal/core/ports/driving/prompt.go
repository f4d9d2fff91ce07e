package driving

import (
	"context"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// CreatePromptPackRequest represents a request to create a prompt pack
type CreatePromptPackRequest struct {
	VersionTag       string             `json:"version_tag"`
	UseCase          string             `json:"use_case"`
	SystemPrompt     string             `json:"system_prompt"`
	LogicBlocks      map[string]string  `json:"logic_blocks,omitempty"`
	RequiredCriteria []domain.Criterion `json:"required_criteria"`
	Description      string             `json:"description,omitempty"`
}

// UpdatePromptPackRequest represents a request to update an unlocked
// prompt pack
type UpdatePromptPackRequest struct {
	SystemPrompt     *string             `json:"system_prompt,omitempty"`
	LogicBlocks      *map[string]string  `json:"logic_blocks,omitempty"`
	RequiredCriteria *[]domain.Criterion `json:"required_criteria,omitempty"`
	Description      *string             `json:"description,omitempty"`
}

// PromptService manages versioned prompt packs (admin operations)
type PromptService interface {
	// Create creates a new prompt pack (admin only)
	Create(ctx context.Context, creatorID string, req CreatePromptPackRequest) (*domain.PromptPack, error)

	// Get retrieves a prompt pack by ID
	Get(ctx context.Context, id string) (*domain.PromptPack, error)

	// GetActiveForUseCase retrieves the active pack for a use case
	GetActiveForUseCase(ctx context.Context, useCase string) (*domain.PromptPack, error)

	// List retrieves all prompt packs
	List(ctx context.Context) ([]*domain.PromptPack, error)

	// Update updates an unlocked prompt pack (admin only).
	// Locked packs return ErrPackLocked.
	Update(ctx context.Context, id string, req UpdatePromptPackRequest) (*domain.PromptPack, error)

	// Lock freezes a pack against further edits (admin only)
	Lock(ctx context.Context, id string) error

	// Activate makes a pack the active version for its use case,
	// deactivating any previously active pack (admin only)
	Activate(ctx context.Context, id string) error

	// Deprecate deactivates a pack and stamps its deprecation time
	// (admin only)
	Deprecate(ctx context.Context, id string) error

	// Delete deletes an unlocked prompt pack (admin only)
	Delete(ctx context.Context, id string) error
}
