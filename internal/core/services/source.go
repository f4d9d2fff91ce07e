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

// Ensure sourceService implements SourceService
var _ driving.SourceService = (*sourceService)(nil)

// sourceService implements the SourceService interface
type sourceService struct {
	sourceStore      driven.SourceStore
	workspaceStore   driven.WorkspaceStore
	auditStore       driven.AuditStore
	connectorFactory driven.ConnectorFactory
	processor        *ingest.Processor
}

// NewSourceService creates a new SourceService
func NewSourceService(
	sourceStore driven.SourceStore,
	workspaceStore driven.WorkspaceStore,
	auditStore driven.AuditStore,
	connectorFactory driven.ConnectorFactory,
	processor *ingest.Processor,
) driving.SourceService {
	return &sourceService{
		sourceStore:      sourceStore,
		workspaceStore:   workspaceStore,
		auditStore:       auditStore,
		connectorFactory: connectorFactory,
		processor:        processor,
	}
}

// Upload ingests a document and persists the source
func (s *sourceService) Upload(ctx context.Context, uploaderID string, req driving.UploadSourceRequest) (*domain.Source, error) {
	if req.WorkspaceID == "" || req.Title == "" || len(req.Data) == 0 {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.workspaceStore.Get(ctx, req.WorkspaceID); err != nil {
		return nil, err
	}

	result, err := s.processor.Process(req.FileName, req.Data, req.SourceType)
	if err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}

	// Same bytes in the same workspace is a duplicate upload
	if existing, err := s.sourceStore.GetByHash(ctx, req.WorkspaceID, result.FileHash); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.SourceStatusDraft
	}

	now := time.Now()
	source := &domain.Source{
		ID:              generateID(),
		WorkspaceID:     req.WorkspaceID,
		Title:           req.Title,
		SourceType:      result.SourceType,
		Status:          status,
		IsAuthoritative: req.IsAuthoritative,
		Version:         req.Version,
		Author:          req.Author,
		Department:      req.Department,
		UploadedBy:      uploaderID,
		FilePath:        req.FileName,
		FileSizeBytes:   result.SizeBytes,
		FileHash:        result.FileHash,
		Content:         result.Content,
		WordCount:       result.WordCount,
		ContainsPII:     req.ContainsPII,
		DocumentDate:    req.DocumentDate,
		UploadedAt:      now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.sourceStore.Save(ctx, source); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditActionCreate, source.ID, uploaderID, fmt.Sprintf("source %q uploaded (%s, %d words)", source.Title, source.SourceType, source.WordCount))

	return source, nil
}

// Import fetches a document from an external provider and ingests it
func (s *sourceService) Import(ctx context.Context, uploaderID string, req driving.ImportRequest) (*domain.Source, error) {
	if req.WorkspaceID == "" || req.ExternalID == "" {
		return nil, domain.ErrInvalidInput
	}
	if s.connectorFactory == nil {
		return nil, domain.ErrConnectorNotFound
	}

	connector, err := s.connectorFactory.Create(req.ProviderType)
	if err != nil {
		return nil, err
	}

	data, file, err := connector.FetchFile(ctx, req.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("fetch from %s: %w", req.ProviderType, err)
	}

	source, err := s.Upload(ctx, uploaderID, driving.UploadSourceRequest{
		WorkspaceID:     req.WorkspaceID,
		Title:           file.Name,
		FileName:        file.Name,
		Data:            data,
		Status:          req.Status,
		IsAuthoritative: req.IsAuthoritative,
		DocumentDate:    file.ModifiedAt,
	})
	if err != nil {
		return nil, err
	}

	// Stamp provider linkage after the common ingest path
	source.ExternalURL = file.WebURL
	source.Author = file.ModifiedBy
	switch req.ProviderType {
	case driven.ProviderGoogleDrive:
		source.DriveID = file.ExternalID
	case driven.ProviderSharePoint:
		source.SharePointID = file.ExternalID
	}
	source.UpdatedAt = time.Now()

	if err := s.sourceStore.Save(ctx, source); err != nil {
		return nil, err
	}

	return source, nil
}

// Get retrieves a source by ID
func (s *sourceService) Get(ctx context.Context, id string) (*domain.Source, error) {
	return s.sourceStore.Get(ctx, id)
}

// List retrieves all sources in a workspace
func (s *sourceService) List(ctx context.Context, workspaceID string) ([]*domain.Source, error) {
	return s.sourceStore.List(ctx, workspaceID)
}

// Update updates source metadata
func (s *sourceService) Update(ctx context.Context, id string, req driving.UpdateSourceRequest) (*domain.Source, error) {
	source, err := s.sourceStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, domain.ErrInvalidInput
		}
		source.Title = *req.Title
	}
	if req.Status != nil {
		source.Status = *req.Status
	}
	if req.IsAuthoritative != nil {
		source.IsAuthoritative = *req.IsAuthoritative
	}
	if req.Version != nil {
		source.Version = *req.Version
	}
	if req.Author != nil {
		source.Author = *req.Author
	}
	if req.Department != nil {
		source.Department = *req.Department
	}
	if req.DocumentDate != nil {
		source.DocumentDate = req.DocumentDate
	}
	if req.ContainsPII != nil {
		source.ContainsPII = *req.ContainsPII
	}
	source.UpdatedAt = time.Now()

	if err := s.sourceStore.Save(ctx, source); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditActionUpdate, id, "", fmt.Sprintf("source %q updated", source.Title))

	return source, nil
}

// Delete deletes a source
func (s *sourceService) Delete(ctx context.Context, id string) error {
	source, err := s.sourceStore.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.sourceStore.Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, domain.AuditActionDelete, id, "", fmt.Sprintf("source %q deleted", source.Title))

	return nil
}

// Purge blanks a source's extracted content, keeping metadata (admin only)
func (s *sourceService) Purge(ctx context.Context, id string) error {
	source, err := s.sourceStore.Get(ctx, id)
	if err != nil {
		return err
	}

	if source.ContentPurged {
		return nil // Idempotent
	}

	if err := s.sourceStore.PurgeContent(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, domain.AuditActionPurge, id, "", fmt.Sprintf("source %q content purged", source.Title))

	return nil
}

// audit records an audit entry, best effort
func (s *sourceService) audit(ctx context.Context, action domain.AuditAction, entityID, userID, description string) {
	_ = s.auditStore.Record(ctx, &domain.AuditEntry{
		ID:          generateID(),
		Action:      action,
		EntityType:  "source",
		EntityID:    entityID,
		UserID:      userID,
		Description: description,
		CreatedAt:   time.Now(),
	})
}
