package driven

import (
	"context"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// IntegrationStore persists external provider connections and their
// sync job history
type IntegrationStore interface {
	// Save creates or updates an integration connection
	Save(ctx context.Context, integration *domain.Integration) error

	// Get retrieves an integration by ID, including credentials
	Get(ctx context.Context, id string) (*domain.Integration, error)

	// List retrieves all integrations, optionally filtered by workspace
	List(ctx context.Context, workspaceID string) ([]*domain.Integration, error)

	// Delete removes an integration and its sync history
	Delete(ctx context.Context, id string) error

	// SaveSyncJob creates or updates a sync job record
	SaveSyncJob(ctx context.Context, job *domain.SyncJob) error

	// ListSyncJobs retrieves an integration's sync jobs, newest first.
	// A limit of zero means no limit.
	ListSyncJobs(ctx context.Context, integrationID string, limit int) ([]*domain.SyncJob, error)
}
