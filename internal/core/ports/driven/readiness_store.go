package driven

import (
	"context"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// ReadinessStore handles readiness check and rigor snapshot persistence
// (PostgreSQL)
type ReadinessStore interface {
	// SaveChecks replaces the stored check records for an analysis with
	// the results of a fresh scan
	SaveChecks(ctx context.Context, analysisID string, checks []*domain.CheckRecord) error

	// ListChecks retrieves the latest check records for an analysis
	ListChecks(ctx context.Context, analysisID string) ([]*domain.CheckRecord, error)

	// SaveSnapshot appends a rigor snapshot
	SaveSnapshot(ctx context.Context, snapshot *domain.RigorSnapshot) error

	// LatestSnapshot retrieves the most recent snapshot for an analysis.
	// Returns ErrNotFound when no snapshot exists yet.
	LatestSnapshot(ctx context.Context, analysisID string) (*domain.RigorSnapshot, error)

	// ListSnapshots retrieves snapshots for an analysis, newest first
	ListSnapshots(ctx context.Context, analysisID string, limit int) ([]*domain.RigorSnapshot, error)
}
