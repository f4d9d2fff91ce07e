package driving

import (
	"context"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// CreateIntegrationRequest represents a request to connect an external
// provider. The connection is tested before it is saved.
type CreateIntegrationRequest struct {
	Name        string            `json:"name"`
	Provider    string            `json:"provider"` // 'google_drive' or 'sharepoint'
	WorkspaceID string            `json:"workspace_id"`
	Credentials map[string]string `json:"credentials"`
	Settings    map[string]string `json:"settings,omitempty"`
}

// UpdateIntegrationRequest represents a request to update an integration
type UpdateIntegrationRequest struct {
	Name        *string            `json:"name,omitempty"`
	Credentials *map[string]string `json:"credentials,omitempty"`
	Settings    *map[string]string `json:"settings,omitempty"`
	Active      *bool              `json:"active,omitempty"`
}

// SyncRequest represents a request to bulk-import documents from an
// integration's provider
type SyncRequest struct {
	JobType  string `json:"job_type,omitempty"`  // Defaults to 'manual'
	FolderID string `json:"folder_id,omitempty"` // Overrides the integration's folder setting
}

// IntegrationService manages stored provider connections and document
// synchronization into workspaces
type IntegrationService interface {
	// Create tests the connection and persists it
	Create(ctx context.Context, creatorID string, req CreateIntegrationRequest) (*domain.Integration, error)

	// Get retrieves an integration by ID
	Get(ctx context.Context, id string) (*domain.Integration, error)

	// List retrieves integrations, optionally filtered by workspace
	List(ctx context.Context, workspaceID string) ([]*domain.Integration, error)

	// Update updates an integration's configuration
	Update(ctx context.Context, id string, req UpdateIntegrationRequest) (*domain.Integration, error)

	// Delete removes an integration and its sync history
	Delete(ctx context.Context, id string) error

	// TestConnection verifies the stored credentials against the provider
	TestConnection(ctx context.Context, id string) error

	// Sync walks the provider's files and imports them into the
	// integration's workspace, recording a sync job
	Sync(ctx context.Context, userID, id string, req SyncRequest) (*domain.SyncJob, error)

	// SyncHistory retrieves past sync jobs, newest first
	SyncHistory(ctx context.Context, id string, limit int) ([]*domain.SyncJob, error)
}
