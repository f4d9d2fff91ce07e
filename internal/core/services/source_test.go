package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven/mocks"
	"github.com/decisionworks/rigor-core/internal/core/ports/driving"
	"github.com/decisionworks/rigor-core/internal/ingest"
)

type fixedFactory struct {
	connector driven.Connector
}

func (f *fixedFactory) Create(providerType driven.ProviderType) (driven.Connector, error) {
	if f.connector == nil || f.connector.Type() != providerType {
		return nil, domain.ErrConnectorNotFound
	}
	return f.connector, nil
}

func (f *fixedFactory) SupportedTypes() []driven.ProviderType {
	if f.connector == nil {
		return nil
	}
	return []driven.ProviderType{f.connector.Type()}
}

func newTestSourceService(factory driven.ConnectorFactory) (*mocks.MockSourceStore, *mocks.MockWorkspaceStore, *sourceService) {
	sourceStore := mocks.NewMockSourceStore()
	workspaceStore := mocks.NewMockWorkspaceStore()
	auditStore := mocks.NewMockAuditStore()
	svc := NewSourceService(sourceStore, workspaceStore, auditStore, factory, ingest.NewProcessor()).(*sourceService)
	return sourceStore, workspaceStore, svc
}

func seedWorkspace(t *testing.T, workspaceStore *mocks.MockWorkspaceStore) *domain.Workspace {
	t.Helper()
	workspace := &domain.Workspace{
		ID:        generateID(),
		Name:      "Test Workspace",
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := workspaceStore.Save(context.Background(), workspace); err != nil {
		t.Fatalf("seed workspace: %v", err)
	}
	return workspace
}

func TestSourceService_Upload(t *testing.T) {
	_, workspaceStore, svc := newTestSourceService(nil)
	workspace := seedWorkspace(t, workspaceStore)

	source, err := svc.Upload(context.Background(), "user-1", driving.UploadSourceRequest{
		WorkspaceID:     workspace.ID,
		Title:           "Strategy Notes",
		FileName:        "strategy.txt",
		Data:            []byte("The risk is bounded by the mitigation plan."),
		IsAuthoritative: true,
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if source.SourceType != domain.SourceTypeText {
		t.Errorf("expected text type, got %s", source.SourceType)
	}
	if source.Status != domain.SourceStatusDraft {
		t.Errorf("expected draft default, got %s", source.Status)
	}
	if source.WordCount != 8 {
		t.Errorf("expected 8 words, got %d", source.WordCount)
	}
	if source.FileHash == "" {
		t.Error("expected file hash")
	}
	if source.UploadedBy != "user-1" {
		t.Errorf("expected uploader user-1, got %s", source.UploadedBy)
	}
}

func TestSourceService_Upload_Validation(t *testing.T) {
	_, workspaceStore, svc := newTestSourceService(nil)
	workspace := seedWorkspace(t, workspaceStore)

	tests := []struct {
		name    string
		req     driving.UploadSourceRequest
		wantErr error
	}{
		{
			name:    "missing workspace",
			req:     driving.UploadSourceRequest{Title: "x", FileName: "x.txt", Data: []byte("a")},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing title",
			req:     driving.UploadSourceRequest{WorkspaceID: workspace.ID, FileName: "x.txt", Data: []byte("a")},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "empty data",
			req:     driving.UploadSourceRequest{WorkspaceID: workspace.ID, Title: "x", FileName: "x.txt"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "unknown workspace",
			req:     driving.UploadSourceRequest{WorkspaceID: "missing", Title: "x", FileName: "x.txt", Data: []byte("a")},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Upload(context.Background(), "user-1", tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSourceService_Upload_DuplicateHash(t *testing.T) {
	_, workspaceStore, svc := newTestSourceService(nil)
	workspace := seedWorkspace(t, workspaceStore)

	req := driving.UploadSourceRequest{
		WorkspaceID: workspace.ID,
		Title:       "Strategy Notes",
		FileName:    "strategy.txt",
		Data:        []byte("identical bytes"),
	}
	if _, err := svc.Upload(context.Background(), "user-1", req); err != nil {
		t.Fatalf("first upload: %v", err)
	}

	req.Title = "Different Title Same Bytes"
	if _, err := svc.Upload(context.Background(), "user-1", req); err != domain.ErrAlreadyExists {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSourceService_Import(t *testing.T) {
	connector := mocks.NewMockConnector(driven.ProviderGoogleDrive)
	modified := time.Now().Add(-48 * time.Hour)
	connector.AddFile("", &driven.RemoteFile{
		ExternalID: "drive-123",
		Name:       "roadmap.txt",
		WebURL:     "https://drive.example.com/roadmap",
		ModifiedAt: &modified,
		ModifiedBy: "pm@example.com",
	}, []byte("milestone one then milestone two"))

	sourceStore, workspaceStore, svc := newTestSourceService(&fixedFactory{connector: connector})
	workspace := seedWorkspace(t, workspaceStore)

	source, err := svc.Import(context.Background(), "user-1", driving.ImportRequest{
		WorkspaceID:  workspace.ID,
		ProviderType: driven.ProviderGoogleDrive,
		ExternalID:   "drive-123",
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if source.DriveID != "drive-123" {
		t.Errorf("expected drive linkage, got %q", source.DriveID)
	}
	if source.ExternalURL != "https://drive.example.com/roadmap" {
		t.Errorf("expected external URL, got %q", source.ExternalURL)
	}
	if source.WordCount != 5 {
		t.Errorf("expected 5 words, got %d", source.WordCount)
	}
	if source.DocumentDate == nil || !source.DocumentDate.Equal(modified) {
		t.Error("expected document date from provider modified time")
	}

	stored, err := sourceStore.Get(context.Background(), source.ID)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.DriveID != "drive-123" {
		t.Error("provider linkage not persisted")
	}
}

func TestSourceService_Import_UnknownProvider(t *testing.T) {
	_, workspaceStore, svc := newTestSourceService(&fixedFactory{})
	workspace := seedWorkspace(t, workspaceStore)

	_, err := svc.Import(context.Background(), "user-1", driving.ImportRequest{
		WorkspaceID:  workspace.ID,
		ProviderType: driven.ProviderSharePoint,
		ExternalID:   "sp-1",
	})
	if err != domain.ErrConnectorNotFound {
		t.Errorf("expected ErrConnectorNotFound, got %v", err)
	}
}

func TestSourceService_Purge(t *testing.T) {
	sourceStore, workspaceStore, svc := newTestSourceService(nil)
	workspace := seedWorkspace(t, workspaceStore)

	source, err := svc.Upload(context.Background(), "user-1", driving.UploadSourceRequest{
		WorkspaceID: workspace.ID,
		Title:       "Sensitive Memo",
		FileName:    "memo.txt",
		Data:        []byte("confidential content"),
		ContainsPII: true,
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Purge(context.Background(), source.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}

	purged, _ := sourceStore.Get(context.Background(), source.ID)
	if purged.Content != "" || !purged.ContentPurged {
		t.Errorf("content not purged: %+v", purged)
	}
	if purged.FileHash == "" || purged.WordCount == 0 {
		t.Error("metadata should survive purge")
	}

	// Idempotent
	if err := svc.Purge(context.Background(), source.ID); err != nil {
		t.Errorf("repeat purge: %v", err)
	}
}
