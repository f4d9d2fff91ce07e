package services

import (
	"context"
	"testing"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven/mocks"
	"github.com/decisionworks/rigor-core/internal/core/ports/driving"
)

func newTestPromptService() (*mocks.MockPromptStore, *promptService) {
	promptStore := mocks.NewMockPromptStore()
	auditStore := mocks.NewMockAuditStore()
	svc := NewPromptService(promptStore, auditStore).(*promptService)
	return promptStore, svc
}

func createPack(t *testing.T, svc *promptService, versionTag, useCase string) *domain.PromptPack {
	t.Helper()
	pack, err := svc.Create(context.Background(), "admin-1", driving.CreatePromptPackRequest{
		VersionTag:   versionTag,
		UseCase:      useCase,
		SystemPrompt: "Analyze the sources.",
		RequiredCriteria: []domain.Criterion{
			{Name: "Risk Assessment", Category: "risk"},
		},
	})
	if err != nil {
		t.Fatalf("create pack: %v", err)
	}
	return pack
}

func TestPromptService_Create(t *testing.T) {
	_, svc := newTestPromptService()

	pack := createPack(t, svc, "v1.0-PM", "post-mortem")
	if pack.Locked {
		t.Error("new packs should be unlocked")
	}
	if pack.Active {
		t.Error("new packs should not be active until activated")
	}

	// Duplicate version tag
	_, err := svc.Create(context.Background(), "admin-1", driving.CreatePromptPackRequest{
		VersionTag:   "v1.0-PM",
		UseCase:      "post-mortem",
		SystemPrompt: "Other",
	})
	if err != domain.ErrAlreadyExists {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	// Missing fields
	_, err = svc.Create(context.Background(), "admin-1", driving.CreatePromptPackRequest{VersionTag: "v2.0-PM"})
	if err != domain.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPromptService_LockBlocksEdits(t *testing.T) {
	_, svc := newTestPromptService()
	pack := createPack(t, svc, "v1.0-PM", "post-mortem")

	if err := svc.Lock(context.Background(), pack.ID); err != nil {
		t.Fatalf("lock: %v", err)
	}

	newPrompt := "Changed"
	_, err := svc.Update(context.Background(), pack.ID, driving.UpdatePromptPackRequest{SystemPrompt: &newPrompt})
	if err != domain.ErrPackLocked {
		t.Errorf("expected ErrPackLocked, got %v", err)
	}

	if err := svc.Delete(context.Background(), pack.ID); err != domain.ErrPackLocked {
		t.Errorf("expected ErrPackLocked on delete, got %v", err)
	}

	// Locking again is a no-op
	if err := svc.Lock(context.Background(), pack.ID); err != nil {
		t.Errorf("repeat lock: %v", err)
	}
}

func TestPromptService_Activate_SwapsActivePack(t *testing.T) {
	promptStore, svc := newTestPromptService()
	first := createPack(t, svc, "v1.0-PM", "post-mortem")
	second := createPack(t, svc, "v1.1-PM", "post-mortem")

	if err := svc.Activate(context.Background(), first.ID); err != nil {
		t.Fatalf("activate first: %v", err)
	}
	if err := svc.Activate(context.Background(), second.ID); err != nil {
		t.Fatalf("activate second: %v", err)
	}

	active, err := svc.GetActiveForUseCase(context.Background(), "post-mortem")
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("expected %s active, got %s", second.ID, active.ID)
	}

	stored, _ := promptStore.Get(context.Background(), first.ID)
	if stored.Active {
		t.Error("first pack should have been deactivated")
	}
}

func TestPromptService_Deprecate(t *testing.T) {
	promptStore, svc := newTestPromptService()
	pack := createPack(t, svc, "v1.0-PM", "post-mortem")

	if err := svc.Activate(context.Background(), pack.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := svc.Deprecate(context.Background(), pack.ID); err != nil {
		t.Fatalf("deprecate: %v", err)
	}

	stored, _ := promptStore.Get(context.Background(), pack.ID)
	if stored.Active {
		t.Error("deprecated pack should be inactive")
	}
	if stored.DeprecatedAt == nil {
		t.Error("deprecation time not stamped")
	}
}

func TestSeedDefaults(t *testing.T) {
	promptStore := mocks.NewMockPromptStore()

	seeded, err := SeedDefaults(context.Background(), promptStore)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if seeded != 3 {
		t.Errorf("expected 3 seeded packs, got %d", seeded)
	}

	for _, useCase := range []string{"post-mortem", "strategy", "decision"} {
		pack, err := promptStore.GetActiveForUseCase(context.Background(), useCase)
		if err != nil {
			t.Errorf("no active pack for %s: %v", useCase, err)
			continue
		}
		if pack.SystemPrompt == "" {
			t.Errorf("pack %s has empty system prompt", pack.VersionTag)
		}
		if len(pack.RequiredCriteria) == 0 {
			t.Errorf("pack %s has no criteria", pack.VersionTag)
		}
	}

	// Re-seeding leaves existing use cases alone
	seeded, err = SeedDefaults(context.Background(), promptStore)
	if err != nil {
		t.Fatalf("re-seed: %v", err)
	}
	if seeded != 0 {
		t.Errorf("expected 0 on re-seed, got %d", seeded)
	}
	if promptStore.Count() != 3 {
		t.Errorf("expected 3 packs after re-seed, got %d", promptStore.Count())
	}
}
