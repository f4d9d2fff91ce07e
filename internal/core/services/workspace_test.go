package services

import (
	"context"
	"testing"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven/mocks"
	"github.com/decisionworks/rigor-core/internal/core/ports/driving"
)

func newTestWorkspaceService() (*mocks.MockWorkspaceStore, *mocks.MockSourceStore, *mocks.MockAuditStore, *workspaceService) {
	workspaceStore := mocks.NewMockWorkspaceStore()
	sourceStore := mocks.NewMockSourceStore()
	auditStore := mocks.NewMockAuditStore()
	svc := NewWorkspaceService(workspaceStore, sourceStore, auditStore).(*workspaceService)
	return workspaceStore, sourceStore, auditStore, svc
}

func TestWorkspaceService_Create(t *testing.T) {
	_, _, auditStore, svc := newTestWorkspaceService()

	tests := []struct {
		name    string
		req     driving.CreateWorkspaceRequest
		wantErr error
		wantVis domain.Visibility
	}{
		{
			name:    "defaults to internal visibility",
			req:     driving.CreateWorkspaceRequest{Name: "Q3 Review"},
			wantVis: domain.VisibilityInternal,
		},
		{
			name:    "board visibility",
			req:     driving.CreateWorkspaceRequest{Name: "Board Pack", Visibility: domain.VisibilityBoard},
			wantVis: domain.VisibilityBoard,
		},
		{
			name:    "missing name",
			req:     driving.CreateWorkspaceRequest{},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "invalid visibility",
			req:     driving.CreateWorkspaceRequest{Name: "Bad", Visibility: "public"},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace, err := svc.Create(context.Background(), "user-1", tt.req)

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if workspace.Visibility != tt.wantVis {
				t.Errorf("expected visibility %s, got %s", tt.wantVis, workspace.Visibility)
			}
			if workspace.CreatedBy != "user-1" {
				t.Errorf("expected creator user-1, got %s", workspace.CreatedBy)
			}
			if !workspace.Active {
				t.Error("new workspaces should be active")
			}
		})
	}

	if auditStore.Count() == 0 {
		t.Error("expected audit entries for creates")
	}
}

func TestWorkspaceService_Create_DuplicateName(t *testing.T) {
	_, _, _, svc := newTestWorkspaceService()

	req := driving.CreateWorkspaceRequest{Name: "Q3 Review"}
	if _, err := svc.Create(context.Background(), "user-1", req); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), "user-1", req); err != domain.ErrAlreadyExists {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestWorkspaceService_GetSummary(t *testing.T) {
	workspaceStore, _, _, svc := newTestWorkspaceService()

	workspace, err := svc.Create(context.Background(), "user-1", driving.CreateWorkspaceRequest{Name: "Q3 Review"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	workspaceStore.SourceCounts[workspace.ID] = 4
	workspaceStore.AnalysisCounts[workspace.ID] = 2

	summary, err := svc.GetSummary(context.Background(), workspace.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.SourceCount != 4 || summary.AnalysisCount != 2 {
		t.Errorf("expected counts 4/2, got %d/%d", summary.SourceCount, summary.AnalysisCount)
	}
}

func TestWorkspaceService_PurgeContent(t *testing.T) {
	_, sourceStore, auditStore, svc := newTestWorkspaceService()

	workspace, err := svc.Create(context.Background(), "user-1", driving.CreateWorkspaceRequest{Name: "Board Pack"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i, content := range []string{"alpha", "beta"} {
		source := &domain.Source{
			ID:          generateID(),
			WorkspaceID: workspace.ID,
			Title:       "doc",
			Content:     content,
			WordCount:   1,
			CreatedAt:   time.Now(),
		}
		if err := sourceStore.Save(context.Background(), source); err != nil {
			t.Fatalf("seed source %d: %v", i, err)
		}
	}

	result, err := svc.PurgeContent(context.Background(), workspace.ID)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if result.SourcesPurged != 2 {
		t.Errorf("expected 2 purged, got %d", result.SourcesPurged)
	}

	sources, _ := sourceStore.List(context.Background(), workspace.ID)
	for _, source := range sources {
		if source.Content != "" || !source.ContentPurged || source.PurgedAt == nil {
			t.Errorf("source %s not purged: %+v", source.ID, source)
		}
		// Metadata survives the purge
		if source.WordCount != 1 {
			t.Errorf("word count lost on purge")
		}
	}

	// Second purge is a no-op
	result, err = svc.PurgeContent(context.Background(), workspace.ID)
	if err != nil {
		t.Fatalf("second purge: %v", err)
	}
	if result.SourcesPurged != 0 {
		t.Errorf("expected 0 purged on repeat, got %d", result.SourcesPurged)
	}

	entries := auditStore.Entries()
	found := false
	for _, entry := range entries {
		if entry.Action == domain.AuditActionPurge {
			found = true
		}
	}
	if !found {
		t.Error("expected a purge audit entry")
	}

	if _, err := svc.PurgeContent(context.Background(), "missing"); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
