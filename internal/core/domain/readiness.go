package domain

import "time"

// RigorSnapshot is a time-series entry showing the evolution of an
// analysis's rigor score. One row per scoring run; the delta is computed
// against the most recent prior snapshot.
type RigorSnapshot struct {
	ID         string `json:"id"`
	AnalysisID string `json:"analysis_id"`

	RigorScore               float64 `json:"rigor_score"`
	SourceVeracityScore      float64 `json:"source_veracity_score"`
	ConflictDetectionScore   float64 `json:"conflict_detection_score"`
	LogicPresenceScore       float64 `json:"logic_presence_score"`
	SourceCount              int     `json:"source_count"`
	AuthoritativeSourceCount int     `json:"authoritative_source_count"`

	DeltaFromPrevious *float64 `json:"delta_from_previous,omitempty"`
	TriggerEvent      string   `json:"trigger_event,omitempty"` // 'score_calculation', 'source_added', 'manual_trigger'

	SnapshotAt time.Time `json:"snapshot_at"`
}

// CheckRecord is a persisted readiness check result for one criterion
// of one analysis
type CheckRecord struct {
	ID         string `json:"id"`
	AnalysisID string `json:"analysis_id"`

	CriterionName     string `json:"criterion_name"`
	CriterionCategory string `json:"criterion_category,omitempty"`

	Status            bool     `json:"status"`
	ConfidenceScore   float64  `json:"confidence_score"` // 0-1.0
	Reasoning         string   `json:"reasoning,omitempty"`
	EvidenceSourceIDs []string `json:"evidence_source_ids,omitempty"`
	EvidenceSnippets  []string `json:"evidence_snippets,omitempty"`

	CheckedAt time.Time `json:"checked_at"`
}
