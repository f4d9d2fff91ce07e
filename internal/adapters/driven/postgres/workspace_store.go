package postgres

import (
	"context"
	"database/sql"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.WorkspaceStore = (*WorkspaceStore)(nil)

// WorkspaceStore implements driven.WorkspaceStore using PostgreSQL
type WorkspaceStore struct {
	db *DB
}

// NewWorkspaceStore creates a new WorkspaceStore
func NewWorkspaceStore(db *DB) *WorkspaceStore {
	return &WorkspaceStore{db: db}
}

// Save creates or updates a workspace
func (s *WorkspaceStore) Save(ctx context.Context, workspace *domain.Workspace) error {
	query := `
		INSERT INTO workspaces (id, name, description, visibility, created_by, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			visibility = EXCLUDED.visibility,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		workspace.ID,
		workspace.Name,
		workspace.Description,
		string(workspace.Visibility),
		workspace.CreatedBy,
		workspace.Active,
		workspace.CreatedAt,
		workspace.UpdatedAt,
	)
	return err
}

// Get retrieves a workspace by ID
func (s *WorkspaceStore) Get(ctx context.Context, id string) (*domain.Workspace, error) {
	query := `
		SELECT id, name, description, visibility, created_by, active, created_at, updated_at
		FROM workspaces
		WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetByName retrieves a workspace by name
func (s *WorkspaceStore) GetByName(ctx context.Context, name string) (*domain.Workspace, error) {
	query := `
		SELECT id, name, description, visibility, created_by, active, created_at, updated_at
		FROM workspaces
		WHERE name = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, name))
}

// List retrieves all workspaces
func (s *WorkspaceStore) List(ctx context.Context) ([]*domain.Workspace, error) {
	query := `
		SELECT id, name, description, visibility, created_by, active, created_at, updated_at
		FROM workspaces
		ORDER BY created_at DESC
	`
	return s.list(ctx, query)
}

// ListActive retrieves all active workspaces
func (s *WorkspaceStore) ListActive(ctx context.Context) ([]*domain.Workspace, error) {
	query := `
		SELECT id, name, description, visibility, created_by, active, created_at, updated_at
		FROM workspaces
		WHERE active = TRUE
		ORDER BY created_at DESC
	`
	return s.list(ctx, query)
}

// Delete deletes a workspace
func (s *WorkspaceStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
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

// CountSources returns the number of sources in a workspace
func (s *WorkspaceStore) CountSources(ctx context.Context, id string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources WHERE workspace_id = $1`, id).Scan(&count)
	return count, err
}

// CountAnalyses returns the number of analyses in a workspace
func (s *WorkspaceStore) CountAnalyses(ctx context.Context, id string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses WHERE workspace_id = $1`, id).Scan(&count)
	return count, err
}

func (s *WorkspaceStore) scanOne(row *sql.Row) (*domain.Workspace, error) {
	var workspace domain.Workspace
	err := row.Scan(
		&workspace.ID,
		&workspace.Name,
		&workspace.Description,
		&workspace.Visibility,
		&workspace.CreatedBy,
		&workspace.Active,
		&workspace.CreatedAt,
		&workspace.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}

func (s *WorkspaceStore) list(ctx context.Context, query string) ([]*domain.Workspace, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []*domain.Workspace
	for rows.Next() {
		var workspace domain.Workspace
		err := rows.Scan(
			&workspace.ID,
			&workspace.Name,
			&workspace.Description,
			&workspace.Visibility,
			&workspace.CreatedBy,
			&workspace.Active,
			&workspace.CreatedAt,
			&workspace.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, &workspace)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workspaces, nil
}
