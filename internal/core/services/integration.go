package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
	"github.com/decisionworks/rigor-core/internal/core/ports/driving"
	"github.com/decisionworks/rigor-core/internal/ingest"
)

// Ensure integrationService implements IntegrationService
var _ driving.IntegrationService = (*integrationService)(nil)

// integrationService implements the IntegrationService interface
type integrationService struct {
	integrationStore driven.IntegrationStore
	workspaceStore   driven.WorkspaceStore
	sourceStore      driven.SourceStore
	auditStore       driven.AuditStore
	builder          driven.ConnectorBuilder
	processor        *ingest.Processor
}

// NewIntegrationService creates a new IntegrationService
func NewIntegrationService(
	integrationStore driven.IntegrationStore,
	workspaceStore driven.WorkspaceStore,
	sourceStore driven.SourceStore,
	auditStore driven.AuditStore,
	builder driven.ConnectorBuilder,
	processor *ingest.Processor,
) driving.IntegrationService {
	return &integrationService{
		integrationStore: integrationStore,
		workspaceStore:   workspaceStore,
		sourceStore:      sourceStore,
		auditStore:       auditStore,
		builder:          builder,
		processor:        processor,
	}
}

func validProvider(provider string) bool {
	switch driven.ProviderType(provider) {
	case driven.ProviderGoogleDrive, driven.ProviderSharePoint:
		return true
	}
	return false
}

// Create tests the connection and persists it
func (s *integrationService) Create(ctx context.Context, creatorID string, req driving.CreateIntegrationRequest) (*domain.Integration, error) {
	if req.Name == "" || req.WorkspaceID == "" || len(req.Credentials) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if !validProvider(req.Provider) {
		return nil, fmt.Errorf("%w: provider must be google_drive or sharepoint", domain.ErrInvalidInput)
	}

	if _, err := s.workspaceStore.Get(ctx, req.WorkspaceID); err != nil {
		return nil, err
	}

	now := time.Now()
	integration := &domain.Integration{
		ID:             generateID(),
		Name:           req.Name,
		Provider:       req.Provider,
		WorkspaceID:    req.WorkspaceID,
		Credentials:    req.Credentials,
		Settings:       req.Settings,
		Active:         true,
		LastSyncStatus: domain.SyncStatusNever,
		CreatedBy:      creatorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// A connection that cannot authenticate is rejected up front
	connector, err := s.builder.Build(integration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := connector.TestConnection(ctx); err != nil {
		return nil, fmt.Errorf("%w: connection test failed: %v", domain.ErrInvalidInput, err)
	}

	if err := s.integrationStore.Save(ctx, integration); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditActionCreate, integration.ID, creatorID, fmt.Sprintf("integration %q (%s) connected", integration.Name, integration.Provider))

	return integration, nil
}

// Get retrieves an integration by ID
func (s *integrationService) Get(ctx context.Context, id string) (*domain.Integration, error) {
	return s.integrationStore.Get(ctx, id)
}

// List retrieves integrations, optionally filtered by workspace
func (s *integrationService) List(ctx context.Context, workspaceID string) ([]*domain.Integration, error) {
	return s.integrationStore.List(ctx, workspaceID)
}

// Update updates an integration's configuration
func (s *integrationService) Update(ctx context.Context, id string, req driving.UpdateIntegrationRequest) (*domain.Integration, error) {
	integration, err := s.integrationStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		integration.Name = *req.Name
	}
	if req.Credentials != nil {
		if len(*req.Credentials) == 0 {
			return nil, domain.ErrInvalidInput
		}
		integration.Credentials = *req.Credentials
	}
	if req.Settings != nil {
		integration.Settings = *req.Settings
	}
	if req.Active != nil {
		integration.Active = *req.Active
	}
	integration.UpdatedAt = time.Now()

	if err := s.integrationStore.Save(ctx, integration); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditActionUpdate, id, "", fmt.Sprintf("integration %q updated", integration.Name))

	return integration, nil
}

// Delete removes an integration and its sync history
func (s *integrationService) Delete(ctx context.Context, id string) error {
	integration, err := s.integrationStore.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.integrationStore.Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, domain.AuditActionDelete, id, "", fmt.Sprintf("integration %q disconnected", integration.Name))

	return nil
}

// TestConnection verifies the stored credentials against the provider
func (s *integrationService) TestConnection(ctx context.Context, id string) error {
	integration, err := s.integrationStore.Get(ctx, id)
	if err != nil {
		return err
	}

	connector, err := s.builder.Build(integration)
	if err != nil {
		return err
	}

	return connector.TestConnection(ctx)
}

// Sync walks the provider's files and imports them into the
// integration's workspace
func (s *integrationService) Sync(ctx context.Context, userID, id string, req driving.SyncRequest) (*domain.SyncJob, error) {
	integration, err := s.integrationStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !integration.Active {
		return nil, fmt.Errorf("%w: integration is not active", domain.ErrInvalidInput)
	}

	jobType := req.JobType
	if jobType == "" {
		jobType = "manual"
	}

	job := &domain.SyncJob{
		ID:            generateID(),
		IntegrationID: id,
		JobType:       jobType,
		Status:        domain.SyncJobRunning,
		StartedAt:     time.Now(),
	}
	if err := s.integrationStore.SaveSyncJob(ctx, job); err != nil {
		return nil, err
	}

	folderID := req.FolderID
	if folderID == "" {
		folderID = integration.Settings["folder_id"]
	}

	syncErr := s.runSync(ctx, integration, folderID, userID, job)

	now := time.Now()
	job.CompletedAt = &now
	integration.LastSyncAt = &now
	integration.UpdatedAt = now

	if syncErr != nil {
		job.Status = domain.SyncJobFailed
		job.ErrorMessage = syncErr.Error()
		integration.LastSyncStatus = domain.SyncStatusFailed
		integration.LastError = syncErr.Error()
	} else {
		job.Status = domain.SyncJobCompleted
		integration.LastError = ""
		if job.FailedFiles > 0 {
			integration.LastSyncStatus = domain.SyncStatusPartial
		} else {
			integration.LastSyncStatus = domain.SyncStatusSuccess
		}
	}

	if err := s.integrationStore.SaveSyncJob(ctx, job); err != nil {
		return nil, err
	}
	if err := s.integrationStore.Save(ctx, integration); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditActionUpdate, id, userID, fmt.Sprintf("sync %s: %d imported, %d skipped, %d failed", job.Status, job.ImportedFiles, job.SkippedFiles, job.FailedFiles))

	return job, nil
}

// runSync lists the provider's files and imports each one. Per-file
// failures are counted, not fatal; listing failures are.
func (s *integrationService) runSync(ctx context.Context, integration *domain.Integration, folderID, userID string, job *domain.SyncJob) error {
	connector, err := s.builder.Build(integration)
	if err != nil {
		return err
	}

	files, err := connector.ListFiles(ctx, folderID)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}
	job.TotalFiles = len(files)

	for _, file := range files {
		if !file.CanDownload {
			job.SkippedFiles++
			continue
		}

		imported, err := s.importRemote(ctx, connector, integration, file, userID)
		switch {
		case err != nil:
			job.FailedFiles++
		case imported:
			job.ImportedFiles++
		default:
			job.SkippedFiles++
		}
	}

	return nil
}

// importRemote fetches and ingests one remote file. Returns false with
// no error when the file is already present in the workspace.
func (s *integrationService) importRemote(ctx context.Context, connector driven.Connector, integration *domain.Integration, file *driven.RemoteFile, userID string) (bool, error) {
	data, remote, err := connector.FetchFile(ctx, file.ExternalID)
	if err != nil {
		return false, err
	}

	result, err := s.processor.Process(remote.Name, data, "")
	if err != nil {
		return false, err
	}

	if existing, err := s.sourceStore.GetByHash(ctx, integration.WorkspaceID, result.FileHash); err == nil && existing != nil {
		return false, nil
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	now := time.Now()
	source := &domain.Source{
		ID:            generateID(),
		WorkspaceID:   integration.WorkspaceID,
		Title:         remote.Name,
		SourceType:    result.SourceType,
		Status:        domain.SourceStatusDraft,
		Author:        remote.ModifiedBy,
		UploadedBy:    userID,
		FilePath:      remote.Name,
		FileSizeBytes: result.SizeBytes,
		FileHash:      result.FileHash,
		Content:       result.Content,
		WordCount:     result.WordCount,
		ExternalURL:   remote.WebURL,
		DocumentDate:  remote.ModifiedAt,
		UploadedAt:    now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	switch driven.ProviderType(integration.Provider) {
	case driven.ProviderGoogleDrive:
		source.DriveID = remote.ExternalID
	case driven.ProviderSharePoint:
		source.SharePointID = remote.ExternalID
	}

	if err := s.sourceStore.Save(ctx, source); err != nil {
		return false, err
	}

	return true, nil
}

// SyncHistory retrieves past sync jobs, newest first
func (s *integrationService) SyncHistory(ctx context.Context, id string, limit int) ([]*domain.SyncJob, error) {
	if _, err := s.integrationStore.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.integrationStore.ListSyncJobs(ctx, id, limit)
}

// audit records an audit entry, best effort
func (s *integrationService) audit(ctx context.Context, action domain.AuditAction, entityID, userID, description string) {
	_ = s.auditStore.Record(ctx, &domain.AuditEntry{
		ID:          generateID(),
		Action:      action,
		EntityType:  "integration",
		EntityID:    entityID,
		UserID:      userID,
		Description: description,
		CreatedAt:   time.Now(),
	})
}
