package driven

import (
	"context"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// AnalysisStore handles analysis persistence (PostgreSQL)
type AnalysisStore interface {
	// Save creates or updates an analysis
	Save(ctx context.Context, analysis *domain.Analysis) error

	// Get retrieves an analysis by ID
	Get(ctx context.Context, id string) (*domain.Analysis, error)

	// List retrieves all analyses in a workspace
	List(ctx context.Context, workspaceID string) ([]*domain.Analysis, error)

	// ListByStatus retrieves analyses in a workspace filtered by status
	ListByStatus(ctx context.Context, workspaceID string, status domain.AnalysisStatus) ([]*domain.Analysis, error)

	// Delete deletes an analysis and its source links
	Delete(ctx context.Context, id string) error

	// AttachSource links a source to an analysis
	AttachSource(ctx context.Context, link *domain.AnalysisSource) error

	// DetachSource removes a source link from an analysis
	DetachSource(ctx context.Context, analysisID, sourceID string) error

	// ListSourceLinks retrieves the source links of an analysis
	ListSourceLinks(ctx context.Context, analysisID string) ([]*domain.AnalysisSource, error)
}
