package driving

import (
	"context"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// CreateWorkspaceRequest represents a request to create a new workspace
type CreateWorkspaceRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Visibility  domain.Visibility `json:"visibility,omitempty"`
}

// UpdateWorkspaceRequest represents a request to update a workspace
type UpdateWorkspaceRequest struct {
	Name        *string            `json:"name,omitempty"`
	Description *string            `json:"description,omitempty"`
	Visibility  *domain.Visibility `json:"visibility,omitempty"`
	Active      *bool              `json:"active,omitempty"`
}

// PurgeResult reports the outcome of a workspace content purge
type PurgeResult struct {
	WorkspaceID   string `json:"workspace_id"`
	SourcesPurged int    `json:"sources_purged"`
}

// WorkspaceService manages workspaces
type WorkspaceService interface {
	// Create creates a new workspace
	Create(ctx context.Context, creatorID string, req CreateWorkspaceRequest) (*domain.Workspace, error)

	// Get retrieves a workspace by ID
	Get(ctx context.Context, id string) (*domain.Workspace, error)

	// GetSummary retrieves a workspace with aggregate counts
	GetSummary(ctx context.Context, id string) (*domain.WorkspaceSummary, error)

	// List retrieves all workspaces
	List(ctx context.Context) ([]*domain.Workspace, error)

	// Update updates a workspace
	Update(ctx context.Context, id string, req UpdateWorkspaceRequest) (*domain.Workspace, error)

	// Delete deletes a workspace (admin only)
	Delete(ctx context.Context, id string) error

	// PurgeContent blanks extracted document content across the
	// workspace, keeping metadata and scores (admin only)
	PurgeContent(ctx context.Context, id string) (*PurgeResult, error)
}
