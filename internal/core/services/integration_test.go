package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven/mocks"
	"github.com/decisionworks/rigor-core/internal/core/ports/driving"
	"github.com/decisionworks/rigor-core/internal/ingest"
)

type fixedBuilder struct {
	connector driven.Connector
	err       error
}

func (b *fixedBuilder) Build(integration *domain.Integration) (driven.Connector, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.connector, nil
}

func newTestIntegrationService(builder driven.ConnectorBuilder) (*mocks.MockIntegrationStore, *mocks.MockWorkspaceStore, *mocks.MockSourceStore, driving.IntegrationService) {
	integrationStore := mocks.NewMockIntegrationStore()
	workspaceStore := mocks.NewMockWorkspaceStore()
	sourceStore := mocks.NewMockSourceStore()
	auditStore := mocks.NewMockAuditStore()
	svc := NewIntegrationService(integrationStore, workspaceStore, sourceStore, auditStore, builder, ingest.NewProcessor())
	return integrationStore, workspaceStore, sourceStore, svc
}

func seedIntegration(t *testing.T, store *mocks.MockIntegrationStore, workspaceID string, active bool) *domain.Integration {
	t.Helper()
	integration := &domain.Integration{
		ID:             generateID(),
		Name:           "Strategy Drive",
		Provider:       string(driven.ProviderGoogleDrive),
		WorkspaceID:    workspaceID,
		Credentials:    map[string]string{"access_token": "tok"},
		Active:         active,
		LastSyncStatus: domain.SyncStatusNever,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := store.Save(context.Background(), integration); err != nil {
		t.Fatalf("seed integration: %v", err)
	}
	return integration
}

func TestIntegrationService_Create(t *testing.T) {
	connector := mocks.NewMockConnector(driven.ProviderGoogleDrive)
	store, workspaceStore, _, svc := newTestIntegrationService(&fixedBuilder{connector: connector})
	workspace := seedWorkspace(t, workspaceStore)

	integration, err := svc.Create(context.Background(), "user-1", driving.CreateIntegrationRequest{
		Name:        "Strategy Drive",
		Provider:    "google_drive",
		WorkspaceID: workspace.ID,
		Credentials: map[string]string{"access_token": "tok"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if integration.ID == "" {
		t.Error("expected generated ID")
	}
	if !integration.Active {
		t.Error("new integration should be active")
	}
	if integration.LastSyncStatus != domain.SyncStatusNever {
		t.Errorf("expected not_synced status, got %s", integration.LastSyncStatus)
	}

	stored, err := store.Get(context.Background(), integration.ID)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.CreatedBy != "user-1" {
		t.Errorf("expected creator user-1, got %s", stored.CreatedBy)
	}
}

func TestIntegrationService_Create_ConnectionFailure(t *testing.T) {
	connector := mocks.NewMockConnector(driven.ProviderGoogleDrive)
	connector.ConnErr = errors.New("401 unauthorized")
	store, workspaceStore, _, svc := newTestIntegrationService(&fixedBuilder{connector: connector})
	workspace := seedWorkspace(t, workspaceStore)

	_, err := svc.Create(context.Background(), "user-1", driving.CreateIntegrationRequest{
		Name:        "Bad Drive",
		Provider:    "google_drive",
		WorkspaceID: workspace.ID,
		Credentials: map[string]string{"access_token": "expired"},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if list, _ := store.List(context.Background(), ""); len(list) != 0 {
		t.Error("failed connection test must not persist the integration")
	}
}

func TestIntegrationService_Create_Validation(t *testing.T) {
	_, workspaceStore, _, svc := newTestIntegrationService(&fixedBuilder{})
	workspace := seedWorkspace(t, workspaceStore)

	cases := []struct {
		name string
		req  driving.CreateIntegrationRequest
	}{
		{"empty name", driving.CreateIntegrationRequest{Provider: "google_drive", WorkspaceID: workspace.ID, Credentials: map[string]string{"access_token": "t"}}},
		{"unknown provider", driving.CreateIntegrationRequest{Name: "X", Provider: "dropbox", WorkspaceID: workspace.ID, Credentials: map[string]string{"access_token": "t"}}},
		{"no credentials", driving.CreateIntegrationRequest{Name: "X", Provider: "google_drive", WorkspaceID: workspace.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), "user-1", tc.req); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestIntegrationService_Create_WorkspaceNotFound(t *testing.T) {
	_, _, _, svc := newTestIntegrationService(&fixedBuilder{connector: mocks.NewMockConnector(driven.ProviderGoogleDrive)})

	_, err := svc.Create(context.Background(), "user-1", driving.CreateIntegrationRequest{
		Name:        "Orphan",
		Provider:    "google_drive",
		WorkspaceID: "ws-missing",
		Credentials: map[string]string{"access_token": "t"},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIntegrationService_Update(t *testing.T) {
	store, workspaceStore, _, svc := newTestIntegrationService(&fixedBuilder{})
	workspace := seedWorkspace(t, workspaceStore)
	integration := seedIntegration(t, store, workspace.ID, true)

	name := "Renamed Drive"
	inactive := false
	updated, err := svc.Update(context.Background(), integration.ID, driving.UpdateIntegrationRequest{
		Name:   &name,
		Active: &inactive,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Renamed Drive" {
		t.Errorf("expected renamed integration, got %s", updated.Name)
	}
	if updated.Active {
		t.Error("expected integration deactivated")
	}

	empty := ""
	if _, err := svc.Update(context.Background(), integration.ID, driving.UpdateIntegrationRequest{Name: &empty}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty name, got %v", err)
	}
}

func TestIntegrationService_Delete(t *testing.T) {
	store, workspaceStore, _, svc := newTestIntegrationService(&fixedBuilder{})
	workspace := seedWorkspace(t, workspaceStore)
	integration := seedIntegration(t, store, workspace.ID, true)

	if err := svc.Delete(context.Background(), integration.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(context.Background(), integration.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected integration removed, got %v", err)
	}
	if err := svc.Delete(context.Background(), integration.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestIntegrationService_Sync(t *testing.T) {
	connector := mocks.NewMockConnector(driven.ProviderGoogleDrive)
	modified := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	connector.AddFile("folder-1", &driven.RemoteFile{
		ExternalID:  "drive-file-1",
		Name:        "q3-strategy.txt",
		WebURL:      "https://drive.example.com/drive-file-1",
		ModifiedAt:  &modified,
		ModifiedBy:  "ana@example.com",
		CanDownload: true,
	}, []byte("Q3 strategy review covering revenue targets and hiring."))
	connector.AddFile("folder-1", &driven.RemoteFile{
		ExternalID:  "drive-file-2",
		Name:        "locked.gdoc",
		CanDownload: false,
	}, nil)

	store, workspaceStore, sourceStore, svc := newTestIntegrationService(&fixedBuilder{connector: connector})
	workspace := seedWorkspace(t, workspaceStore)
	integration := seedIntegration(t, store, workspace.ID, true)

	job, err := svc.Sync(context.Background(), "user-1", integration.ID, driving.SyncRequest{FolderID: "folder-1"})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if job.Status != domain.SyncJobCompleted {
		t.Errorf("expected completed job, got %s", job.Status)
	}
	if job.TotalFiles != 2 || job.ImportedFiles != 1 || job.SkippedFiles != 1 || job.FailedFiles != 0 {
		t.Errorf("unexpected counters: total=%d imported=%d skipped=%d failed=%d",
			job.TotalFiles, job.ImportedFiles, job.SkippedFiles, job.FailedFiles)
	}
	if job.CompletedAt == nil {
		t.Error("expected completion timestamp")
	}

	sources, err := sourceStore.List(context.Background(), workspace.ID)
	if err != nil {
		t.Fatalf("list sources: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 imported source, got %d", len(sources))
	}
	source := sources[0]
	if source.DriveID != "drive-file-1" {
		t.Errorf("expected drive linkage, got %q", source.DriveID)
	}
	if source.Author != "ana@example.com" {
		t.Errorf("expected author from provider, got %q", source.Author)
	}
	if !strings.Contains(source.Content, "revenue targets") {
		t.Error("expected extracted content on imported source")
	}

	refreshed, err := store.Get(context.Background(), integration.ID)
	if err != nil {
		t.Fatalf("get integration: %v", err)
	}
	if refreshed.LastSyncStatus != domain.SyncStatusSuccess {
		t.Errorf("expected success status, got %s", refreshed.LastSyncStatus)
	}
	if refreshed.LastSyncAt == nil {
		t.Error("expected last sync timestamp")
	}
}

func TestIntegrationService_Sync_DuplicatesSkipped(t *testing.T) {
	connector := mocks.NewMockConnector(driven.ProviderGoogleDrive)
	connector.AddFile("", &driven.RemoteFile{
		ExternalID:  "drive-file-1",
		Name:        "minutes.txt",
		CanDownload: true,
	}, []byte("Board minutes from March."))

	store, workspaceStore, sourceStore, svc := newTestIntegrationService(&fixedBuilder{connector: connector})
	workspace := seedWorkspace(t, workspaceStore)
	integration := seedIntegration(t, store, workspace.ID, true)

	if _, err := svc.Sync(context.Background(), "user-1", integration.ID, driving.SyncRequest{}); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	job, err := svc.Sync(context.Background(), "user-1", integration.ID, driving.SyncRequest{})
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if job.ImportedFiles != 0 || job.SkippedFiles != 1 {
		t.Errorf("expected re-sync to skip the existing file, got imported=%d skipped=%d", job.ImportedFiles, job.SkippedFiles)
	}
	if sourceStore.Count() != 1 {
		t.Errorf("expected exactly 1 source after re-sync, got %d", sourceStore.Count())
	}
}

func TestIntegrationService_Sync_Inactive(t *testing.T) {
	store, workspaceStore, _, svc := newTestIntegrationService(&fixedBuilder{})
	workspace := seedWorkspace(t, workspaceStore)
	integration := seedIntegration(t, store, workspace.ID, false)

	_, err := svc.Sync(context.Background(), "user-1", integration.ID, driving.SyncRequest{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for inactive integration, got %v", err)
	}
}

func TestIntegrationService_Sync_ListFailure(t *testing.T) {
	connector := mocks.NewMockConnector(driven.ProviderGoogleDrive)
	connector.ConnErr = errors.New("503 service unavailable")
	store, workspaceStore, _, svc := newTestIntegrationService(&fixedBuilder{connector: connector})
	workspace := seedWorkspace(t, workspaceStore)
	integration := seedIntegration(t, store, workspace.ID, true)

	job, err := svc.Sync(context.Background(), "user-1", integration.ID, driving.SyncRequest{})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if job.Status != domain.SyncJobFailed {
		t.Errorf("expected failed job, got %s", job.Status)
	}
	if job.ErrorMessage == "" {
		t.Error("expected error message on failed job")
	}

	refreshed, _ := store.Get(context.Background(), integration.ID)
	if refreshed.LastSyncStatus != domain.SyncStatusFailed {
		t.Errorf("expected failed status, got %s", refreshed.LastSyncStatus)
	}
	if refreshed.LastError == "" {
		t.Error("expected last error recorded")
	}
}

func TestIntegrationService_SyncHistory(t *testing.T) {
	connector := mocks.NewMockConnector(driven.ProviderGoogleDrive)
	connector.AddFile("", &driven.RemoteFile{ExternalID: "f1", Name: "doc.txt", CanDownload: true}, []byte("content"))

	store, workspaceStore, _, svc := newTestIntegrationService(&fixedBuilder{connector: connector})
	workspace := seedWorkspace(t, workspaceStore)
	integration := seedIntegration(t, store, workspace.ID, true)

	for i := 0; i < 3; i++ {
		if _, err := svc.Sync(context.Background(), "user-1", integration.ID, driving.SyncRequest{}); err != nil {
			t.Fatalf("sync %d: %v", i, err)
		}
	}

	jobs, err := svc.SyncHistory(context.Background(), integration.ID, 2)
	if err != nil {
		t.Fatalf("sync history: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("expected history limited to 2 jobs, got %d", len(jobs))
	}

	if _, err := svc.SyncHistory(context.Background(), "missing", 0); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown integration, got %v", err)
	}
}
