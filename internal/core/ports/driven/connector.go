package driven

import (
	"context"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// ProviderType identifies an external document provider
type ProviderType string

const (
	ProviderGoogleDrive ProviderType = "google_drive"
	ProviderSharePoint  ProviderType = "sharepoint"
)

// RemoteFile describes a document living in an external provider before
// it has been imported
type RemoteFile struct {
	ExternalID  string // Provider-specific file ID
	Name        string
	MimeType    string
	SizeBytes   int64
	WebURL      string
	ModifiedAt  *time.Time
	ModifiedBy  string
	FolderID    string
	CanDownload bool
}

// Connector fetches documents from an external provider.
// Connectors are created by the ConnectorFactory with resolved credentials.
type Connector interface {
	// Type returns the provider type
	Type() ProviderType

	// ListFiles lists files under a folder. An empty folderID means the
	// provider's root or default drive.
	ListFiles(ctx context.Context, folderID string) ([]*RemoteFile, error)

	// FetchFile downloads a file's raw bytes by external ID
	FetchFile(ctx context.Context, externalID string) ([]byte, *RemoteFile, error)

	// TestConnection verifies credentials against the provider
	TestConnection(ctx context.Context) error
}

// ConnectorBuilder constructs a connector from a stored integration's
// credentials, as opposed to the process-wide registrations the factory
// serves.
type ConnectorBuilder interface {
	// Build creates a connector for the integration's provider using
	// its stored credentials
	Build(integration *domain.Integration) (Connector, error)
}

// ConnectorFactory creates connectors by provider type.
// Returns domain.ErrConnectorNotFound for unregistered types.
type ConnectorFactory interface {
	// Create creates a connector for the given provider type
	Create(providerType ProviderType) (Connector, error)

	// SupportedTypes returns all registered provider types
	SupportedTypes() []ProviderType
}
