package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AnalysisStore = (*AnalysisStore)(nil)

// AnalysisStore implements driven.AnalysisStore using PostgreSQL
type AnalysisStore struct {
	db *DB
}

// NewAnalysisStore creates a new AnalysisStore
func NewAnalysisStore(db *DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

const analysisColumns = `id, workspace_id, name, type, description, prompt_pack_id, prompt_version,
	status, rigor_score, confidence_level, summary_text, detected_conflicts, package_url,
	exported_at, created_by, started_at, completed_at, created_at, updated_at`

// Save creates or updates an analysis
func (s *AnalysisStore) Save(ctx context.Context, analysis *domain.Analysis) error {
	conflicts := analysis.DetectedConflicts
	if conflicts == nil {
		conflicts = []domain.Conflict{}
	}
	conflictsJSON, err := json.Marshal(conflicts)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analyses (` + analysisColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			rigor_score = EXCLUDED.rigor_score,
			confidence_level = EXCLUDED.confidence_level,
			summary_text = EXCLUDED.summary_text,
			detected_conflicts = EXCLUDED.detected_conflicts,
			package_url = EXCLUDED.package_url,
			exported_at = EXCLUDED.exported_at,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.WorkspaceID,
		analysis.Name,
		string(analysis.Type),
		analysis.Description,
		analysis.PromptPackID,
		analysis.PromptVersion,
		string(analysis.Status),
		NullFloat(analysis.RigorScore),
		NullFloat(analysis.ConfidenceLevel),
		analysis.SummaryText,
		conflictsJSON,
		analysis.PackageURL,
		NullTime(analysis.ExportedAt),
		analysis.CreatedBy,
		NullTime(analysis.StartedAt),
		NullTime(analysis.CompletedAt),
		analysis.CreatedAt,
		analysis.UpdatedAt,
	)
	return err
}

// Get retrieves an analysis by ID
func (s *AnalysisStore) Get(ctx context.Context, id string) (*domain.Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`
	return scanAnalysis(s.db.QueryRowContext(ctx, query, id))
}

// List retrieves all analyses in a workspace
func (s *AnalysisStore) List(ctx context.Context, workspaceID string) ([]*domain.Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE workspace_id = $1 ORDER BY created_at DESC`
	return s.list(ctx, query, workspaceID)
}

// ListByStatus retrieves analyses in a workspace filtered by status
func (s *AnalysisStore) ListByStatus(ctx context.Context, workspaceID string, status domain.AnalysisStatus) ([]*domain.Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE workspace_id = $1 AND status = $2 ORDER BY created_at DESC`
	return s.list(ctx, query, workspaceID, string(status))
}

// Delete deletes an analysis; source links go with it via cascade
func (s *AnalysisStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// AttachSource links a source to an analysis
func (s *AnalysisStore) AttachSource(ctx context.Context, link *domain.AnalysisSource) error {
	query := `
		INSERT INTO analysis_sources (analysis_id, source_id, weight, inclusion_reason, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (analysis_id, source_id) DO UPDATE SET
			weight = EXCLUDED.weight,
			inclusion_reason = EXCLUDED.inclusion_reason
	`
	_, err := s.db.ExecContext(ctx, query,
		link.AnalysisID,
		link.SourceID,
		link.Weight,
		link.InclusionReason,
		link.AddedAt,
	)
	return err
}

// DetachSource removes a source link from an analysis
func (s *AnalysisStore) DetachSource(ctx context.Context, analysisID, sourceID string) error {
	query := `DELETE FROM analysis_sources WHERE analysis_id = $1 AND source_id = $2`
	result, err := s.db.ExecContext(ctx, query, analysisID, sourceID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// ListSourceLinks retrieves the source links of an analysis
func (s *AnalysisStore) ListSourceLinks(ctx context.Context, analysisID string) ([]*domain.AnalysisSource, error) {
	query := `
		SELECT analysis_id, source_id, weight, inclusion_reason, added_at
		FROM analysis_sources
		WHERE analysis_id = $1
		ORDER BY added_at
	`

	rows, err := s.db.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*domain.AnalysisSource
	for rows.Next() {
		var link domain.AnalysisSource
		err := rows.Scan(
			&link.AnalysisID,
			&link.SourceID,
			&link.Weight,
			&link.InclusionReason,
			&link.AddedAt,
		)
		if err != nil {
			return nil, err
		}
		links = append(links, &link)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return links, nil
}

func (s *AnalysisStore) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Analysis, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*domain.Analysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return analyses, nil
}

func scanAnalysis(row scanner) (*domain.Analysis, error) {
	var analysis domain.Analysis
	var rigorScore, confidenceLevel sql.NullFloat64
	var exportedAt, startedAt, completedAt sql.NullTime
	var conflictsJSON []byte

	err := row.Scan(
		&analysis.ID,
		&analysis.WorkspaceID,
		&analysis.Name,
		&analysis.Type,
		&analysis.Description,
		&analysis.PromptPackID,
		&analysis.PromptVersion,
		&analysis.Status,
		&rigorScore,
		&confidenceLevel,
		&analysis.SummaryText,
		&conflictsJSON,
		&analysis.PackageURL,
		&exportedAt,
		&analysis.CreatedBy,
		&startedAt,
		&completedAt,
		&analysis.CreatedAt,
		&analysis.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(conflictsJSON) > 0 {
		if err := json.Unmarshal(conflictsJSON, &analysis.DetectedConflicts); err != nil {
			return nil, err
		}
	}
	if len(analysis.DetectedConflicts) == 0 {
		analysis.DetectedConflicts = nil
	}

	analysis.RigorScore = FloatPtr(rigorScore)
	analysis.ConfidenceLevel = FloatPtr(confidenceLevel)
	analysis.ExportedAt = TimePtr(exportedAt)
	analysis.StartedAt = TimePtr(startedAt)
	analysis.CompletedAt = TimePtr(completedAt)
	return &analysis, nil
}
