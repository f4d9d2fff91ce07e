package services

import (
	"context"
	"fmt"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
	"github.com/decisionworks/rigor-core/internal/core/ports/driving"
)

// Ensure workspaceService implements WorkspaceService
var _ driving.WorkspaceService = (*workspaceService)(nil)

// workspaceService implements the WorkspaceService interface
type workspaceService struct {
	workspaceStore driven.WorkspaceStore
	sourceStore    driven.SourceStore
	auditStore     driven.AuditStore
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(
	workspaceStore driven.WorkspaceStore,
	sourceStore driven.SourceStore,
	auditStore driven.AuditStore,
) driving.WorkspaceService {
	return &workspaceService{
		workspaceStore: workspaceStore,
		sourceStore:    sourceStore,
		auditStore:     auditStore,
	}
}

// Create creates a new workspace
func (s *workspaceService) Create(ctx context.Context, creatorID string, req driving.CreateWorkspaceRequest) (*domain.Workspace, error) {
	if req.Name == "" {
		return nil, domain.ErrInvalidInput
	}

	existing, _ := s.workspaceStore.GetByName(ctx, req.Name)
	if existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = domain.VisibilityInternal
	}
	if visibility != domain.VisibilityBoard && visibility != domain.VisibilityInternal && visibility != domain.VisibilityConfidential {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	workspace := &domain.Workspace{
		ID:          generateID(),
		Name:        req.Name,
		Description: req.Description,
		Visibility:  visibility,
		CreatedBy:   creatorID,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.workspaceStore.Save(ctx, workspace); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditActionCreate, workspace.ID, creatorID, fmt.Sprintf("workspace %q created", workspace.Name))

	return workspace, nil
}

// Get retrieves a workspace by ID
func (s *workspaceService) Get(ctx context.Context, id string) (*domain.Workspace, error) {
	return s.workspaceStore.Get(ctx, id)
}

// GetSummary retrieves a workspace with aggregate counts
func (s *workspaceService) GetSummary(ctx context.Context, id string) (*domain.WorkspaceSummary, error) {
	workspace, err := s.workspaceStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	sourceCount, err := s.workspaceStore.CountSources(ctx, id)
	if err != nil {
		return nil, err
	}

	analysisCount, err := s.workspaceStore.CountAnalyses(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.WorkspaceSummary{
		Workspace:     workspace,
		SourceCount:   sourceCount,
		AnalysisCount: analysisCount,
	}, nil
}

// List retrieves all workspaces
func (s *workspaceService) List(ctx context.Context) ([]*domain.Workspace, error) {
	return s.workspaceStore.List(ctx)
}

// Update updates a workspace
func (s *workspaceService) Update(ctx context.Context, id string, req driving.UpdateWorkspaceRequest) (*domain.Workspace, error) {
	workspace, err := s.workspaceStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		workspace.Name = *req.Name
	}
	if req.Description != nil {
		workspace.Description = *req.Description
	}
	if req.Visibility != nil {
		workspace.Visibility = *req.Visibility
	}
	if req.Active != nil {
		workspace.Active = *req.Active
	}
	workspace.UpdatedAt = time.Now()

	if err := s.workspaceStore.Save(ctx, workspace); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditActionUpdate, id, "", fmt.Sprintf("workspace %q updated", workspace.Name))

	return workspace, nil
}

// Delete deletes a workspace (admin only)
func (s *workspaceService) Delete(ctx context.Context, id string) error {
	workspace, err := s.workspaceStore.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.workspaceStore.Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, domain.AuditActionDelete, id, "", fmt.Sprintf("workspace %q deleted", workspace.Name))

	return nil
}

// PurgeContent blanks extracted document content across the workspace,
// keeping metadata and scores (admin only)
func (s *workspaceService) PurgeContent(ctx context.Context, id string) (*driving.PurgeResult, error) {
	if _, err := s.workspaceStore.Get(ctx, id); err != nil {
		return nil, err
	}

	purged, err := s.sourceStore.PurgeWorkspaceContent(ctx, id)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditActionPurge, id, "", fmt.Sprintf("content purged from %d sources", purged))

	return &driving.PurgeResult{
		WorkspaceID:   id,
		SourcesPurged: purged,
	}, nil
}

// audit records an audit entry, best effort
func (s *workspaceService) audit(ctx context.Context, action domain.AuditAction, entityID, userID, description string) {
	_ = s.auditStore.Record(ctx, &domain.AuditEntry{
		ID:          generateID(),
		Action:      action,
		EntityType:  "workspace",
		EntityID:    entityID,
		UserID:      userID,
		Description: description,
		CreatedAt:   time.Now(),
	})
}
