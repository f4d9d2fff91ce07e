package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.IntegrationStore = (*IntegrationStore)(nil)

// IntegrationStore implements driven.IntegrationStore using PostgreSQL
type IntegrationStore struct {
	db *DB
}

// NewIntegrationStore creates a new IntegrationStore
func NewIntegrationStore(db *DB) *IntegrationStore {
	return &IntegrationStore{db: db}
}

const integrationColumns = `id, name, provider, workspace_id, credentials, settings,
	active, last_sync_at, last_sync_status, last_error, created_by, created_at, updated_at`

const syncJobColumns = `id, integration_id, job_type, status, total_files, imported_files,
	skipped_files, failed_files, error_message, started_at, completed_at`

// Save creates or updates an integration
func (s *IntegrationStore) Save(ctx context.Context, integration *domain.Integration) error {
	credentials := integration.Credentials
	if credentials == nil {
		credentials = map[string]string{}
	}
	credentialsJSON, err := json.Marshal(credentials)
	if err != nil {
		return err
	}

	settings := integration.Settings
	if settings == nil {
		settings = map[string]string{}
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO integrations (` + integrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			provider = EXCLUDED.provider,
			credentials = EXCLUDED.credentials,
			settings = EXCLUDED.settings,
			active = EXCLUDED.active,
			last_sync_at = EXCLUDED.last_sync_at,
			last_sync_status = EXCLUDED.last_sync_status,
			last_error = EXCLUDED.last_error,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		integration.ID,
		integration.Name,
		integration.Provider,
		integration.WorkspaceID,
		credentialsJSON,
		settingsJSON,
		integration.Active,
		NullTime(integration.LastSyncAt),
		integration.LastSyncStatus,
		integration.LastError,
		integration.CreatedBy,
		integration.CreatedAt,
		integration.UpdatedAt,
	)
	return err
}

// Get retrieves an integration by ID
func (s *IntegrationStore) Get(ctx context.Context, id string) (*domain.Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM integrations WHERE id = $1`
	return scanIntegration(s.db.QueryRowContext(ctx, query, id))
}

// List retrieves integrations, optionally filtered by workspace
func (s *IntegrationStore) List(ctx context.Context, workspaceID string) ([]*domain.Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM integrations`
	args := []interface{}{}
	if workspaceID != "" {
		query += ` WHERE workspace_id = $1`
		args = append(args, workspaceID)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var integrations []*domain.Integration
	for rows.Next() {
		integration, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		integrations = append(integrations, integration)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return integrations, nil
}

// Delete deletes an integration and its sync jobs
func (s *IntegrationStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM integrations WHERE id = $1`, id)
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

// SaveSyncJob creates or updates a sync job
func (s *IntegrationStore) SaveSyncJob(ctx context.Context, job *domain.SyncJob) error {
	query := `
		INSERT INTO sync_jobs (` + syncJobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			total_files = EXCLUDED.total_files,
			imported_files = EXCLUDED.imported_files,
			skipped_files = EXCLUDED.skipped_files,
			failed_files = EXCLUDED.failed_files,
			error_message = EXCLUDED.error_message,
			completed_at = EXCLUDED.completed_at
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.IntegrationID,
		job.JobType,
		job.Status,
		job.TotalFiles,
		job.ImportedFiles,
		job.SkippedFiles,
		job.FailedFiles,
		job.ErrorMessage,
		job.StartedAt,
		NullTime(job.CompletedAt),
	)
	return err
}

// ListSyncJobs retrieves sync jobs for an integration, newest first.
// A limit of zero returns all jobs.
func (s *IntegrationStore) ListSyncJobs(ctx context.Context, integrationID string, limit int) ([]*domain.SyncJob, error) {
	query := `SELECT ` + syncJobColumns + ` FROM sync_jobs WHERE integration_id = $1 ORDER BY started_at DESC`
	args := []interface{}{integrationID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.SyncJob
	for rows.Next() {
		job, err := scanSyncJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

func scanIntegration(row scanner) (*domain.Integration, error) {
	var integration domain.Integration
	var credentialsJSON, settingsJSON []byte
	var lastSyncAt sql.NullTime

	err := row.Scan(
		&integration.ID,
		&integration.Name,
		&integration.Provider,
		&integration.WorkspaceID,
		&credentialsJSON,
		&settingsJSON,
		&integration.Active,
		&lastSyncAt,
		&integration.LastSyncStatus,
		&integration.LastError,
		&integration.CreatedBy,
		&integration.CreatedAt,
		&integration.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(credentialsJSON) > 0 {
		if err := json.Unmarshal(credentialsJSON, &integration.Credentials); err != nil {
			return nil, err
		}
	}
	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &integration.Settings); err != nil {
			return nil, err
		}
	}
	if len(integration.Settings) == 0 {
		integration.Settings = nil
	}

	integration.LastSyncAt = TimePtr(lastSyncAt)
	return &integration, nil
}

func scanSyncJob(row scanner) (*domain.SyncJob, error) {
	var job domain.SyncJob
	var completedAt sql.NullTime

	err := row.Scan(
		&job.ID,
		&job.IntegrationID,
		&job.JobType,
		&job.Status,
		&job.TotalFiles,
		&job.ImportedFiles,
		&job.SkippedFiles,
		&job.FailedFiles,
		&job.ErrorMessage,
		&job.StartedAt,
		&completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	job.CompletedAt = TimePtr(completedAt)
	return &job, nil
}
