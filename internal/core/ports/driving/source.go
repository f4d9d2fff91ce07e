package driving

import (
	"context"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// UploadSourceRequest represents a request to ingest a document
type UploadSourceRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Title       string `json:"title"`
	FileName    string `json:"file_name"`
	Data        []byte `json:"-"`

	SourceType      domain.SourceType   `json:"source_type,omitempty"` // Detected from FileName when empty
	Status          domain.SourceStatus `json:"status,omitempty"`
	IsAuthoritative bool                `json:"is_authoritative"`
	Version         string              `json:"version,omitempty"`
	Author          string              `json:"author,omitempty"`
	Department      string              `json:"department,omitempty"`
	DocumentDate    *time.Time          `json:"document_date,omitempty"`
	ContainsPII     bool                `json:"contains_pii"`
}

// UpdateSourceRequest represents a request to update source metadata
type UpdateSourceRequest struct {
	Title           *string              `json:"title,omitempty"`
	Status          *domain.SourceStatus `json:"status,omitempty"`
	IsAuthoritative *bool                `json:"is_authoritative,omitempty"`
	Version         *string              `json:"version,omitempty"`
	Author          *string              `json:"author,omitempty"`
	Department      *string              `json:"department,omitempty"`
	DocumentDate    *time.Time           `json:"document_date,omitempty"`
	ContainsPII     *bool                `json:"contains_pii,omitempty"`
}

// ImportRequest represents a request to import a document from an
// external provider
type ImportRequest struct {
	WorkspaceID  string              `json:"workspace_id"`
	ProviderType driven.ProviderType `json:"provider_type"`
	ExternalID   string              `json:"external_id"`

	IsAuthoritative bool                `json:"is_authoritative"`
	Status          domain.SourceStatus `json:"status,omitempty"`
}

// SourceService manages document sources
type SourceService interface {
	// Upload ingests a document: detects its type, hashes and extracts
	// text, counts words, and persists the source. Duplicate uploads
	// (same hash in the same workspace) return ErrAlreadyExists.
	Upload(ctx context.Context, uploaderID string, req UploadSourceRequest) (*domain.Source, error)

	// Import fetches a document from an external provider and ingests it
	Import(ctx context.Context, uploaderID string, req ImportRequest) (*domain.Source, error)

	// Get retrieves a source by ID
	Get(ctx context.Context, id string) (*domain.Source, error)

	// List retrieves all sources in a workspace
	List(ctx context.Context, workspaceID string) ([]*domain.Source, error)

	// Update updates source metadata
	Update(ctx context.Context, id string, req UpdateSourceRequest) (*domain.Source, error)

	// Delete deletes a source
	Delete(ctx context.Context, id string) error

	// Purge blanks a source's extracted content, keeping metadata
	// (admin only)
	Purge(ctx context.Context, id string) error
}
