package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore implements driven.PromptStore using PostgreSQL
type PromptStore struct {
	db *DB
}

// NewPromptStore creates a new PromptStore
func NewPromptStore(db *DB) *PromptStore {
	return &PromptStore{db: db}
}

const promptColumns = `id, version_tag, use_case, system_prompt, logic_blocks, required_criteria,
	description, created_by, locked, active, created_at, updated_at, deprecated_at`

// Save creates or updates a prompt pack
func (s *PromptStore) Save(ctx context.Context, pack *domain.PromptPack) error {
	logicBlocks := pack.LogicBlocks
	if logicBlocks == nil {
		logicBlocks = map[string]string{}
	}
	blocksJSON, err := json.Marshal(logicBlocks)
	if err != nil {
		return err
	}

	criteria := pack.RequiredCriteria
	if criteria == nil {
		criteria = []domain.Criterion{}
	}
	criteriaJSON, err := json.Marshal(criteria)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO prompt_packs (` + promptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			version_tag = EXCLUDED.version_tag,
			use_case = EXCLUDED.use_case,
			system_prompt = EXCLUDED.system_prompt,
			logic_blocks = EXCLUDED.logic_blocks,
			required_criteria = EXCLUDED.required_criteria,
			description = EXCLUDED.description,
			locked = EXCLUDED.locked,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at,
			deprecated_at = EXCLUDED.deprecated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		pack.ID,
		pack.VersionTag,
		pack.UseCase,
		pack.SystemPrompt,
		blocksJSON,
		criteriaJSON,
		pack.Description,
		pack.CreatedBy,
		pack.Locked,
		pack.Active,
		pack.CreatedAt,
		pack.UpdatedAt,
		NullTime(pack.DeprecatedAt),
	)
	return err
}

// Get retrieves a prompt pack by ID
func (s *PromptStore) Get(ctx context.Context, id string) (*domain.PromptPack, error) {
	query := `SELECT ` + promptColumns + ` FROM prompt_packs WHERE id = $1`
	return scanPromptPack(s.db.QueryRowContext(ctx, query, id))
}

// GetByVersionTag retrieves a prompt pack by version tag
func (s *PromptStore) GetByVersionTag(ctx context.Context, versionTag string) (*domain.PromptPack, error) {
	query := `SELECT ` + promptColumns + ` FROM prompt_packs WHERE version_tag = $1`
	return scanPromptPack(s.db.QueryRowContext(ctx, query, versionTag))
}

// GetActiveForUseCase retrieves the active pack for a use case
func (s *PromptStore) GetActiveForUseCase(ctx context.Context, useCase string) (*domain.PromptPack, error) {
	query := `SELECT ` + promptColumns + ` FROM prompt_packs WHERE use_case = $1 AND active = TRUE`
	return scanPromptPack(s.db.QueryRowContext(ctx, query, useCase))
}

// List retrieves all prompt packs
func (s *PromptStore) List(ctx context.Context) ([]*domain.PromptPack, error) {
	query := `SELECT ` + promptColumns + ` FROM prompt_packs ORDER BY created_at DESC`
	return s.list(ctx, query)
}

// ListByUseCase retrieves all prompt packs for a use case
func (s *PromptStore) ListByUseCase(ctx context.Context, useCase string) ([]*domain.PromptPack, error) {
	query := `SELECT ` + promptColumns + ` FROM prompt_packs WHERE use_case = $1 ORDER BY created_at DESC`
	return s.list(ctx, query, useCase)
}

// Delete deletes a prompt pack
func (s *PromptStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM prompt_packs WHERE id = $1`, id)
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

func (s *PromptStore) list(ctx context.Context, query string, args ...interface{}) ([]*domain.PromptPack, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packs []*domain.PromptPack
	for rows.Next() {
		pack, err := scanPromptPack(rows)
		if err != nil {
			return nil, err
		}
		packs = append(packs, pack)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return packs, nil
}

func scanPromptPack(row scanner) (*domain.PromptPack, error) {
	var pack domain.PromptPack
	var blocksJSON, criteriaJSON []byte
	var deprecatedAt sql.NullTime

	err := row.Scan(
		&pack.ID,
		&pack.VersionTag,
		&pack.UseCase,
		&pack.SystemPrompt,
		&blocksJSON,
		&criteriaJSON,
		&pack.Description,
		&pack.CreatedBy,
		&pack.Locked,
		&pack.Active,
		&pack.CreatedAt,
		&pack.UpdatedAt,
		&deprecatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(blocksJSON) > 0 {
		if err := json.Unmarshal(blocksJSON, &pack.LogicBlocks); err != nil {
			return nil, err
		}
	}
	if len(pack.LogicBlocks) == 0 {
		pack.LogicBlocks = nil
	}
	if len(criteriaJSON) > 0 {
		if err := json.Unmarshal(criteriaJSON, &pack.RequiredCriteria); err != nil {
			return nil, err
		}
	}

	pack.DeprecatedAt = TimePtr(deprecatedAt)
	return &pack, nil
}
