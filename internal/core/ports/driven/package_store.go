package driven

import "context"

// PackageStore persists built export archives (local filesystem)
type PackageStore interface {
	// Save stores an archive and returns its retrieval URL
	Save(ctx context.Context, analysisID string, data []byte) (string, error)

	// Load retrieves a stored archive by analysis ID
	Load(ctx context.Context, analysisID string) ([]byte, error)

	// Delete removes a stored archive
	Delete(ctx context.Context, analysisID string) error
}
