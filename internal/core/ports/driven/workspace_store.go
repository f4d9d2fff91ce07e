package driven

import (
	"context"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// WorkspaceStore handles workspace persistence (PostgreSQL)
type WorkspaceStore interface {
	// Save creates or updates a workspace
	Save(ctx context.Context, workspace *domain.Workspace) error

	// Get retrieves a workspace by ID
	Get(ctx context.Context, id string) (*domain.Workspace, error)

	// GetByName retrieves a workspace by name
	GetByName(ctx context.Context, name string) (*domain.Workspace, error)

	// List retrieves all workspaces
	List(ctx context.Context) ([]*domain.Workspace, error)

	// ListActive retrieves all active workspaces
	ListActive(ctx context.Context) ([]*domain.Workspace, error)

	// Delete deletes a workspace
	Delete(ctx context.Context, id string) error

	// CountSources returns the number of sources in a workspace
	CountSources(ctx context.Context, id string) (int, error)

	// CountAnalyses returns the number of analyses in a workspace
	CountAnalyses(ctx context.Context, id string) (int, error)
}
