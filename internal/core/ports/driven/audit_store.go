package driven

import (
	"context"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// AuditStore handles audit trail persistence (PostgreSQL).
// Entries are append-only; there is no update or delete.
type AuditStore interface {
	// Record appends an audit entry
	Record(ctx context.Context, entry *domain.AuditEntry) error

	// ListByEntity retrieves entries for one entity, newest first
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditEntry, error)

	// ListRecent retrieves the most recent entries across all entities
	ListRecent(ctx context.Context, limit int) ([]*domain.AuditEntry, error)
}
