package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore implements driven.SourceStore using PostgreSQL
type SourceStore struct {
	db *DB
}

// NewSourceStore creates a new SourceStore
func NewSourceStore(db *DB) *SourceStore {
	return &SourceStore{db: db}
}

const sourceColumns = `id, workspace_id, title, source_type, status, is_authoritative,
	version, author, department, uploaded_by, file_path, file_size_bytes, file_hash,
	content, word_count, page_count, language, external_url, drive_id, sharepoint_id,
	contains_pii, content_purged, purged_at, document_date, uploaded_at, created_at, updated_at`

// Save creates or updates a source
func (s *SourceStore) Save(ctx context.Context, source *domain.Source) error {
	query := `
		INSERT INTO sources (` + sourceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			source_type = EXCLUDED.source_type,
			status = EXCLUDED.status,
			is_authoritative = EXCLUDED.is_authoritative,
			version = EXCLUDED.version,
			author = EXCLUDED.author,
			department = EXCLUDED.department,
			file_path = EXCLUDED.file_path,
			file_size_bytes = EXCLUDED.file_size_bytes,
			file_hash = EXCLUDED.file_hash,
			content = EXCLUDED.content,
			word_count = EXCLUDED.word_count,
			page_count = EXCLUDED.page_count,
			language = EXCLUDED.language,
			external_url = EXCLUDED.external_url,
			drive_id = EXCLUDED.drive_id,
			sharepoint_id = EXCLUDED.sharepoint_id,
			contains_pii = EXCLUDED.contains_pii,
			content_purged = EXCLUDED.content_purged,
			purged_at = EXCLUDED.purged_at,
			document_date = EXCLUDED.document_date,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		source.ID,
		source.WorkspaceID,
		source.Title,
		string(source.SourceType),
		string(source.Status),
		source.IsAuthoritative,
		source.Version,
		source.Author,
		source.Department,
		source.UploadedBy,
		source.FilePath,
		source.FileSizeBytes,
		source.FileHash,
		source.Content,
		source.WordCount,
		source.PageCount,
		source.Language,
		source.ExternalURL,
		source.DriveID,
		source.SharePointID,
		source.ContainsPII,
		source.ContentPurged,
		NullTime(source.PurgedAt),
		NullTime(source.DocumentDate),
		source.UploadedAt,
		source.CreatedAt,
		source.UpdatedAt,
	)
	return err
}

// Get retrieves a source by ID, including extracted content
func (s *SourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE id = $1`
	return scanSource(s.db.QueryRowContext(ctx, query, id))
}

// GetByHash retrieves a source in a workspace by file hash
func (s *SourceStore) GetByHash(ctx context.Context, workspaceID, fileHash string) (*domain.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE workspace_id = $1 AND file_hash = $2`
	return scanSource(s.db.QueryRowContext(ctx, query, workspaceID, fileHash))
}

// List retrieves all sources in a workspace, without content
func (s *SourceStore) List(ctx context.Context, workspaceID string) ([]*domain.Source, error) {
	// Listings replace content with '' to keep result sets small
	query := `
		SELECT id, workspace_id, title, source_type, status, is_authoritative,
			version, author, department, uploaded_by, file_path, file_size_bytes, file_hash,
			'', word_count, page_count, language, external_url, drive_id, sharepoint_id,
			contains_pii, content_purged, purged_at, document_date, uploaded_at, created_at, updated_at
		FROM sources
		WHERE workspace_id = $1
		ORDER BY uploaded_at DESC
	`
	return s.list(ctx, query, workspaceID)
}

// ListByAnalysis retrieves the sources attached to an analysis, including content
func (s *SourceStore) ListByAnalysis(ctx context.Context, analysisID string) ([]*domain.Source, error) {
	query := `
		SELECT s.id, s.workspace_id, s.title, s.source_type, s.status, s.is_authoritative,
			s.version, s.author, s.department, s.uploaded_by, s.file_path, s.file_size_bytes, s.file_hash,
			s.content, s.word_count, s.page_count, s.language, s.external_url, s.drive_id, s.sharepoint_id,
			s.contains_pii, s.content_purged, s.purged_at, s.document_date, s.uploaded_at, s.created_at, s.updated_at
		FROM sources s
		JOIN analysis_sources link ON link.source_id = s.id
		WHERE link.analysis_id = $1
		ORDER BY link.added_at
	`
	return s.list(ctx, query, analysisID)
}

// Delete deletes a source
func (s *SourceStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = $1`, id)
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

// PurgeContent blanks extracted content and marks the source purged,
// keeping metadata intact
func (s *SourceStore) PurgeContent(ctx context.Context, id string) error {
	query := `
		UPDATE sources
		SET content = '', content_purged = TRUE, purged_at = $1, updated_at = $1
		WHERE id = $2 AND content_purged = FALSE
	`
	result, err := s.db.ExecContext(ctx, query, time.Now(), id)
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

// PurgeWorkspaceContent blanks content for every source in a workspace
// and returns the number of sources purged
func (s *SourceStore) PurgeWorkspaceContent(ctx context.Context, workspaceID string) (int, error) {
	query := `
		UPDATE sources
		SET content = '', content_purged = TRUE, purged_at = $1, updated_at = $1
		WHERE workspace_id = $2 AND content_purged = FALSE
	`
	result, err := s.db.ExecContext(ctx, query, time.Now(), workspaceID)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rowsAffected), nil
}

func (s *SourceStore) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Source, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*domain.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sources, nil
}

// scanner abstracts sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row scanner) (*domain.Source, error) {
	var source domain.Source
	var purgedAt, documentDate sql.NullTime

	err := row.Scan(
		&source.ID,
		&source.WorkspaceID,
		&source.Title,
		&source.SourceType,
		&source.Status,
		&source.IsAuthoritative,
		&source.Version,
		&source.Author,
		&source.Department,
		&source.UploadedBy,
		&source.FilePath,
		&source.FileSizeBytes,
		&source.FileHash,
		&source.Content,
		&source.WordCount,
		&source.PageCount,
		&source.Language,
		&source.ExternalURL,
		&source.DriveID,
		&source.SharePointID,
		&source.ContainsPII,
		&source.ContentPurged,
		&purgedAt,
		&documentDate,
		&source.UploadedAt,
		&source.CreatedAt,
		&source.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	source.PurgedAt = TimePtr(purgedAt)
	source.DocumentDate = TimePtr(documentDate)
	return &source, nil
}
