package domain

import "time"

// AnalysisStatus tracks execution state
type AnalysisStatus string

const (
	AnalysisStatusPending    AnalysisStatus = "pending"
	AnalysisStatusInProgress AnalysisStatus = "in_progress"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// AnalysisType describes the kind of leadership review being run
type AnalysisType string

const (
	AnalysisTypePostMortem     AnalysisType = "post-mortem"
	AnalysisTypeStrategy       AnalysisType = "strategy"
	AnalysisTypeDecision       AnalysisType = "decision"
	AnalysisTypeRiskAssessment AnalysisType = "risk-assessment"
	AnalysisTypeGeneral        AnalysisType = "general"
)

// ConflictSeverity grades how badly two sources contradict each other
type ConflictSeverity string

const (
	ConflictSeverityCritical ConflictSeverity = "critical" // Major contradictions (dates, figures, decisions)
	ConflictSeverityHigh     ConflictSeverity = "high"     // Significant inconsistencies
	ConflictSeverityMedium   ConflictSeverity = "medium"   // Minor discrepancies
	ConflictSeverityLow      ConflictSeverity = "low"      // Trivial differences
)

// Conflict records a detected contradiction between sources.
// Unrecognized severities are treated as medium by the scorer.
type Conflict struct {
	Severity    ConflictSeverity `json:"severity"`
	Description string           `json:"description,omitempty"`
	SourceIDs   []string         `json:"source_ids,omitempty"`
}

// Analysis links a prompt pack to a set of sources and carries the
// scoring results
type Analysis struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`

	Name        string       `json:"name"`
	Type        AnalysisType `json:"type"`
	Description string       `json:"description,omitempty"`

	// Prompt pack reference; version pinned at creation time
	PromptPackID  string `json:"prompt_pack_id"`
	PromptVersion string `json:"prompt_version,omitempty"`

	// Status and results
	Status          AnalysisStatus `json:"status"`
	RigorScore      *float64       `json:"rigor_score,omitempty"`      // 0-100, nil until scored
	ConfidenceLevel *float64       `json:"confidence_level,omitempty"` // 0-1.0

	SummaryText       string     `json:"summary_text,omitempty"`
	DetectedConflicts []Conflict `json:"detected_conflicts,omitempty"`

	// Export tracking
	PackageURL string     `json:"package_url,omitempty"`
	ExportedAt *time.Time `json:"exported_at,omitempty"`

	CreatedBy   string     `json:"created_by,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AnalysisSource links a source to an analysis with a weighting hint
type AnalysisSource struct {
	AnalysisID      string    `json:"analysis_id"`
	SourceID        string    `json:"source_id"`
	Weight          float64   `json:"weight"`
	InclusionReason string    `json:"inclusion_reason,omitempty"`
	AddedAt         time.Time `json:"added_at"`
}
