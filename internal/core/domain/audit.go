package domain

import "time"

// AuditAction classifies a recorded action
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionExport AuditAction = "export"
	AuditActionPurge  AuditAction = "purge"
	AuditActionAccess AuditAction = "access"
)

// AuditEntry records one action against one entity for compliance review
type AuditEntry struct {
	ID string `json:"id"`

	Action     AuditAction `json:"action"`
	EntityType string      `json:"entity_type"` // 'workspace', 'source', 'analysis', 'prompt_pack'
	EntityID   string      `json:"entity_id"`

	UserID    string `json:"user_id,omitempty"`
	UserRole  string `json:"user_role,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`

	Description string `json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
