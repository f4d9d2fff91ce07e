package driving

import (
	"context"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/rigor"
)

// CreateAnalysisRequest represents a request to create an analysis
type CreateAnalysisRequest struct {
	WorkspaceID  string              `json:"workspace_id"`
	Name         string              `json:"name"`
	Type         domain.AnalysisType `json:"type"`
	Description  string              `json:"description,omitempty"`
	PromptPackID string              `json:"prompt_pack_id,omitempty"` // Active pack for Type when empty
}

// AttachSourceRequest represents a request to link a source to an analysis
type AttachSourceRequest struct {
	SourceID        string  `json:"source_id"`
	Weight          float64 `json:"weight,omitempty"` // Defaults to 1.0
	InclusionReason string  `json:"inclusion_reason,omitempty"`
}

// ReportConflictRequest represents a manually reported contradiction
// between sources of an analysis
type ReportConflictRequest struct {
	Severity    domain.ConflictSeverity `json:"severity"`
	Description string                  `json:"description,omitempty"`
	SourceIDs   []string                `json:"source_ids,omitempty"`
}

// ScoreResponse is the result of a scoring run, including its snapshot
type ScoreResponse struct {
	Result   rigor.ScoreResult     `json:"result"`
	Snapshot *domain.RigorSnapshot `json:"snapshot"`
}

// ExportResponse reports a completed export package
type ExportResponse struct {
	PackageURL string `json:"package_url"`
	SizeBytes  int64  `json:"size_bytes"`
	FileCount  int    `json:"file_count"`
}

// AnalysisService manages analyses, scoring, and export
type AnalysisService interface {
	// Create creates a new analysis, pinning the prompt pack version
	Create(ctx context.Context, creatorID string, req CreateAnalysisRequest) (*domain.Analysis, error)

	// Get retrieves an analysis by ID
	Get(ctx context.Context, id string) (*domain.Analysis, error)

	// List retrieves all analyses in a workspace
	List(ctx context.Context, workspaceID string) ([]*domain.Analysis, error)

	// Delete deletes an analysis
	Delete(ctx context.Context, id string) error

	// AttachSource links a source to an analysis
	AttachSource(ctx context.Context, analysisID string, req AttachSourceRequest) error

	// DetachSource unlinks a source from an analysis
	DetachSource(ctx context.Context, analysisID, sourceID string) error

	// ReportConflict records a contradiction between sources, affecting
	// subsequent scores
	ReportConflict(ctx context.Context, analysisID string, req ReportConflictRequest) error

	// Score computes the rigor score over the analysis's sources and
	// records a snapshot with the delta from the previous run
	Score(ctx context.Context, analysisID string) (*ScoreResponse, error)

	// Readiness scans the analysis's sources against its prompt pack's
	// required criteria and persists the per-criterion check records
	Readiness(ctx context.Context, analysisID string) (*rigor.ReadinessResult, error)

	// History retrieves rigor snapshots for an analysis, newest first
	History(ctx context.Context, analysisID string, limit int) ([]*domain.RigorSnapshot, error)

	// Export builds the handoff package for an external LLM and marks
	// the analysis exported. Fails unless readiness passes.
	Export(ctx context.Context, analysisID string, includeCitations bool) (*ExportResponse, error)
}
