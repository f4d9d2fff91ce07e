package driven

import (
	"context"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// SourceStore handles source persistence (PostgreSQL)
type SourceStore interface {
	// Save creates or updates a source
	Save(ctx context.Context, source *domain.Source) error

	// Get retrieves a source by ID, including extracted content
	Get(ctx context.Context, id string) (*domain.Source, error)

	// GetByHash retrieves a source in a workspace by file hash
	GetByHash(ctx context.Context, workspaceID, fileHash string) (*domain.Source, error)

	// List retrieves all sources in a workspace, without content
	List(ctx context.Context, workspaceID string) ([]*domain.Source, error)

	// ListByAnalysis retrieves the sources attached to an analysis,
	// including content
	ListByAnalysis(ctx context.Context, analysisID string) ([]*domain.Source, error)

	// Delete deletes a source
	Delete(ctx context.Context, id string) error

	// PurgeContent blanks extracted content and marks the source purged,
	// keeping metadata intact
	PurgeContent(ctx context.Context, id string) error

	// PurgeWorkspaceContent blanks content for every source in a
	// workspace and returns the number of sources purged
	PurgeWorkspaceContent(ctx context.Context, workspaceID string) (int, error)
}
