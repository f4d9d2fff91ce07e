package postgres

import (
	"context"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AuditStore = (*AuditStore)(nil)

// AuditStore implements driven.AuditStore using PostgreSQL.
// The table is append-only.
type AuditStore struct {
	db *DB
}

// NewAuditStore creates a new AuditStore
func NewAuditStore(db *DB) *AuditStore {
	return &AuditStore{db: db}
}

// Record appends an audit entry
func (s *AuditStore) Record(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, action, entity_type, entity_id, user_id, user_role, ip_address, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		string(entry.Action),
		entry.EntityType,
		entry.EntityID,
		entry.UserID,
		entry.UserRole,
		entry.IPAddress,
		entry.Description,
		entry.CreatedAt,
	)
	return err
}

// ListByEntity retrieves entries for one entity, newest first
func (s *AuditStore) ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, action, entity_type, entity_id, user_id, user_role, ip_address, description, created_at
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
	`
	return s.list(ctx, query, entityType, entityID)
}

// ListRecent retrieves the most recent entries across all entities
func (s *AuditStore) ListRecent(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, action, entity_type, entity_id, user_id, user_role, ip_address, description, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`
	return s.list(ctx, query, limit)
}

func (s *AuditStore) list(ctx context.Context, query string, args ...interface{}) ([]*domain.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.UserID,
			&entry.UserRole,
			&entry.IPAddress,
			&entry.Description,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
