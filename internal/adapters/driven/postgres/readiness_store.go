package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ReadinessStore = (*ReadinessStore)(nil)

// ReadinessStore implements driven.ReadinessStore using PostgreSQL
type ReadinessStore struct {
	db *DB
}

// NewReadinessStore creates a new ReadinessStore
func NewReadinessStore(db *DB) *ReadinessStore {
	return &ReadinessStore{db: db}
}

// SaveChecks replaces the stored check records for an analysis with the
// results of a fresh scan
func (s *ReadinessStore) SaveChecks(ctx context.Context, analysisID string, checks []*domain.CheckRecord) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM readiness_checks WHERE analysis_id = $1`, analysisID); err != nil {
			return err
		}

		query := `
			INSERT INTO readiness_checks (id, analysis_id, criterion_name, criterion_category,
				status, confidence_score, reasoning, evidence_source_ids, evidence_snippets, checked_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		for _, check := range checks {
			_, err := tx.ExecContext(ctx, query,
				check.ID,
				check.AnalysisID,
				check.CriterionName,
				check.CriterionCategory,
				check.Status,
				check.ConfidenceScore,
				check.Reasoning,
				pq.Array(check.EvidenceSourceIDs),
				pq.Array(check.EvidenceSnippets),
				check.CheckedAt,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ListChecks retrieves the latest check records for an analysis
func (s *ReadinessStore) ListChecks(ctx context.Context, analysisID string) ([]*domain.CheckRecord, error) {
	query := `
		SELECT id, analysis_id, criterion_name, criterion_category,
			status, confidence_score, reasoning, evidence_source_ids, evidence_snippets, checked_at
		FROM readiness_checks
		WHERE analysis_id = $1
		ORDER BY criterion_name
	`

	rows, err := s.db.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []*domain.CheckRecord
	for rows.Next() {
		var check domain.CheckRecord
		err := rows.Scan(
			&check.ID,
			&check.AnalysisID,
			&check.CriterionName,
			&check.CriterionCategory,
			&check.Status,
			&check.ConfidenceScore,
			&check.Reasoning,
			pq.Array(&check.EvidenceSourceIDs),
			pq.Array(&check.EvidenceSnippets),
			&check.CheckedAt,
		)
		if err != nil {
			return nil, err
		}
		checks = append(checks, &check)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return checks, nil
}

// SaveSnapshot appends a rigor snapshot
func (s *ReadinessStore) SaveSnapshot(ctx context.Context, snapshot *domain.RigorSnapshot) error {
	query := `
		INSERT INTO rigor_snapshots (id, analysis_id, rigor_score, source_veracity_score,
			conflict_detection_score, logic_presence_score, source_count,
			authoritative_source_count, delta_from_previous, trigger_event, snapshot_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		snapshot.ID,
		snapshot.AnalysisID,
		snapshot.RigorScore,
		snapshot.SourceVeracityScore,
		snapshot.ConflictDetectionScore,
		snapshot.LogicPresenceScore,
		snapshot.SourceCount,
		snapshot.AuthoritativeSourceCount,
		NullFloat(snapshot.DeltaFromPrevious),
		snapshot.TriggerEvent,
		snapshot.SnapshotAt,
	)
	return err
}

// LatestSnapshot retrieves the most recent snapshot for an analysis
func (s *ReadinessStore) LatestSnapshot(ctx context.Context, analysisID string) (*domain.RigorSnapshot, error) {
	query := snapshotSelect + ` WHERE analysis_id = $1 ORDER BY snapshot_at DESC LIMIT 1`
	return scanSnapshot(s.db.QueryRowContext(ctx, query, analysisID))
}

// ListSnapshots retrieves snapshots for an analysis, newest first
func (s *ReadinessStore) ListSnapshots(ctx context.Context, analysisID string, limit int) ([]*domain.RigorSnapshot, error) {
	query := snapshotSelect + ` WHERE analysis_id = $1 ORDER BY snapshot_at DESC`
	args := []interface{}{analysisID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*domain.RigorSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snapshots, nil
}

const snapshotSelect = `
	SELECT id, analysis_id, rigor_score, source_veracity_score,
		conflict_detection_score, logic_presence_score, source_count,
		authoritative_source_count, delta_from_previous, trigger_event, snapshot_at
	FROM rigor_snapshots
`

func scanSnapshot(row scanner) (*domain.RigorSnapshot, error) {
	var snapshot domain.RigorSnapshot
	var delta sql.NullFloat64

	err := row.Scan(
		&snapshot.ID,
		&snapshot.AnalysisID,
		&snapshot.RigorScore,
		&snapshot.SourceVeracityScore,
		&snapshot.ConflictDetectionScore,
		&snapshot.LogicPresenceScore,
		&snapshot.SourceCount,
		&snapshot.AuthoritativeSourceCount,
		&delta,
		&snapshot.TriggerEvent,
		&snapshot.SnapshotAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	snapshot.DeltaFromPrevious = FloatPtr(delta)
	return &snapshot, nil
}
