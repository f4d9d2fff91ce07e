package services

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
	"github.com/decisionworks/rigor-core/internal/core/ports/driving"
)

//go:embed seed_packs.yaml
var seedPacksYAML []byte

// Ensure promptService implements PromptService
var _ driving.PromptService = (*promptService)(nil)

// promptService implements the PromptService interface
type promptService struct {
	promptStore driven.PromptStore
	auditStore  driven.AuditStore
}

// NewPromptService creates a new PromptService
func NewPromptService(
	promptStore driven.PromptStore,
	auditStore driven.AuditStore,
) driving.PromptService {
	return &promptService{
		promptStore: promptStore,
		auditStore:  auditStore,
	}
}

// seedFile is the shape of the embedded seed pack manifest
type seedFile struct {
	Packs []seedPack `yaml:"packs"`
}

type seedPack struct {
	VersionTag       string             `yaml:"version_tag"`
	UseCase          string             `yaml:"use_case"`
	Description      string             `yaml:"description"`
	SystemPrompt     string             `yaml:"system_prompt"`
	LogicBlocks      map[string]string  `yaml:"logic_blocks"`
	RequiredCriteria []domain.Criterion `yaml:"required_criteria"`
}

// SeedDefaults installs the bundled default packs for any use case that
// has no packs yet. Already-seeded use cases are left alone.
func SeedDefaults(ctx context.Context, promptStore driven.PromptStore) (int, error) {
	var manifest seedFile
	if err := yaml.Unmarshal(seedPacksYAML, &manifest); err != nil {
		return 0, fmt.Errorf("parse seed packs: %w", err)
	}

	seeded := 0
	for _, seed := range manifest.Packs {
		existing, err := promptStore.ListByUseCase(ctx, seed.UseCase)
		if err != nil {
			return seeded, err
		}
		if len(existing) > 0 {
			continue
		}

		now := time.Now()
		pack := &domain.PromptPack{
			ID:               generateID(),
			VersionTag:       seed.VersionTag,
			UseCase:          seed.UseCase,
			SystemPrompt:     seed.SystemPrompt,
			LogicBlocks:      seed.LogicBlocks,
			RequiredCriteria: seed.RequiredCriteria,
			Description:      seed.Description,
			Locked:           false,
			Active:           true,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := promptStore.Save(ctx, pack); err != nil {
			return seeded, err
		}
		seeded++
	}

	return seeded, nil
}

// Create creates a new prompt pack (admin only)
func (s *promptService) Create(ctx context.Context, creatorID string, req driving.CreatePromptPackRequest) (*domain.PromptPack, error) {
	if req.VersionTag == "" || req.UseCase == "" || req.SystemPrompt == "" {
		return nil, domain.ErrInvalidInput
	}

	existing, _ := s.promptStore.GetByVersionTag(ctx, req.VersionTag)
	if existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	now := time.Now()
	pack := &domain.PromptPack{
		ID:               generateID(),
		VersionTag:       req.VersionTag,
		UseCase:          req.UseCase,
		SystemPrompt:     req.SystemPrompt,
		LogicBlocks:      req.LogicBlocks,
		RequiredCriteria: req.RequiredCriteria,
		Description:      req.Description,
		CreatedBy:        creatorID,
		Locked:           false,
		Active:           false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.promptStore.Save(ctx, pack); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditActionCreate, pack.ID, creatorID, fmt.Sprintf("prompt pack %s created", pack.VersionTag))

	return pack, nil
}

// Get retrieves a prompt pack by ID
func (s *promptService) Get(ctx context.Context, id string) (*domain.PromptPack, error) {
	return s.promptStore.Get(ctx, id)
}

// GetActiveForUseCase retrieves the active pack for a use case
func (s *promptService) GetActiveForUseCase(ctx context.Context, useCase string) (*domain.PromptPack, error) {
	return s.promptStore.GetActiveForUseCase(ctx, useCase)
}

// List retrieves all prompt packs
func (s *promptService) List(ctx context.Context) ([]*domain.PromptPack, error) {
	return s.promptStore.List(ctx)
}

// Update updates an unlocked prompt pack (admin only)
func (s *promptService) Update(ctx context.Context, id string, req driving.UpdatePromptPackRequest) (*domain.PromptPack, error) {
	pack, err := s.promptStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if pack.Locked {
		return nil, domain.ErrPackLocked
	}

	if req.SystemPrompt != nil {
		if *req.SystemPrompt == "" {
			return nil, domain.ErrInvalidInput
		}
		pack.SystemPrompt = *req.SystemPrompt
	}
	if req.LogicBlocks != nil {
		pack.LogicBlocks = *req.LogicBlocks
	}
	if req.RequiredCriteria != nil {
		pack.RequiredCriteria = *req.RequiredCriteria
	}
	if req.Description != nil {
		pack.Description = *req.Description
	}
	pack.UpdatedAt = time.Now()

	if err := s.promptStore.Save(ctx, pack); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.AuditActionUpdate, id, "", fmt.Sprintf("prompt pack %s updated", pack.VersionTag))

	return pack, nil
}

// Lock freezes a pack against further edits (admin only)
func (s *promptService) Lock(ctx context.Context, id string) error {
	pack, err := s.promptStore.Get(ctx, id)
	if err != nil {
		return err
	}

	if pack.Locked {
		return nil // Idempotent
	}

	pack.Locked = true
	pack.UpdatedAt = time.Now()

	if err := s.promptStore.Save(ctx, pack); err != nil {
		return err
	}

	s.audit(ctx, domain.AuditActionUpdate, id, "", fmt.Sprintf("prompt pack %s locked", pack.VersionTag))

	return nil
}

// Activate makes a pack the active version for its use case
func (s *promptService) Activate(ctx context.Context, id string) error {
	pack, err := s.promptStore.Get(ctx, id)
	if err != nil {
		return err
	}

	// Deactivate the currently active pack for this use case
	current, err := s.promptStore.GetActiveForUseCase(ctx, pack.UseCase)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if current != nil && current.ID != pack.ID {
		current.Active = false
		current.UpdatedAt = time.Now()
		if err := s.promptStore.Save(ctx, current); err != nil {
			return err
		}
	}

	pack.Active = true
	pack.DeprecatedAt = nil
	pack.UpdatedAt = time.Now()

	if err := s.promptStore.Save(ctx, pack); err != nil {
		return err
	}

	s.audit(ctx, domain.AuditActionUpdate, id, "", fmt.Sprintf("prompt pack %s activated for %s", pack.VersionTag, pack.UseCase))

	return nil
}

// Deprecate deactivates a pack and stamps its deprecation time (admin only)
func (s *promptService) Deprecate(ctx context.Context, id string) error {
	pack, err := s.promptStore.Get(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	pack.Active = false
	pack.DeprecatedAt = &now
	pack.UpdatedAt = now

	if err := s.promptStore.Save(ctx, pack); err != nil {
		return err
	}

	s.audit(ctx, domain.AuditActionUpdate, id, "", fmt.Sprintf("prompt pack %s deprecated", pack.VersionTag))

	return nil
}

// Delete deletes an unlocked prompt pack (admin only)
func (s *promptService) Delete(ctx context.Context, id string) error {
	pack, err := s.promptStore.Get(ctx, id)
	if err != nil {
		return err
	}

	if pack.Locked {
		return domain.ErrPackLocked
	}

	if err := s.promptStore.Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, domain.AuditActionDelete, id, "", fmt.Sprintf("prompt pack %s deleted", pack.VersionTag))

	return nil
}

// audit records an audit entry, best effort
func (s *promptService) audit(ctx context.Context, action domain.AuditAction, entityID, userID, description string) {
	_ = s.auditStore.Record(ctx, &domain.AuditEntry{
		ID:          generateID(),
		Action:      action,
		EntityType:  "prompt_pack",
		EntityID:    entityID,
		UserID:      userID,
		Description: description,
		CreatedAt:   time.Now(),
	})
}
