// Package filestore persists export packages on local disk. Packages
// are immutable blobs keyed by analysis ID, so a flat directory of ZIP
// files is enough.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PackageStore = (*PackageStore)(nil)

// PackageStore implements driven.PackageStore on the local filesystem
type PackageStore struct {
	dir     string
	urlBase string
}

// NewPackageStore creates a package store rooted at dir. Files are
// served under urlBase (default "/exports").
func NewPackageStore(dir, urlBase string) (*PackageStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("package directory is required")
	}
	if urlBase == "" {
		urlBase = "/exports"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create package directory: %w", err)
	}

	return &PackageStore{
		dir:     dir,
		urlBase: strings.TrimSuffix(urlBase, "/"),
	}, nil
}

// Save writes the package and returns its serving URL
func (s *PackageStore) Save(_ context.Context, analysisID string, data []byte) (string, error) {
	name, err := packageName(analysisID)
	if err != nil {
		return "", err
	}

	// Write to a temp file first so readers never see partial packages
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create package file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write package: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close package: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("finalize package: %w", err)
	}

	return s.urlBase + "/" + name, nil
}

// Load reads a stored package
func (s *PackageStore) Load(_ context.Context, analysisID string) ([]byte, error) {
	name, err := packageName(analysisID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read package: %w", err)
	}

	return data, nil
}

// Delete removes a stored package. Missing packages are not an error.
func (s *PackageStore) Delete(_ context.Context, analysisID string) error {
	name, err := packageName(analysisID)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete package: %w", err)
	}

	return nil
}

// packageName maps an analysis ID to its file name, rejecting IDs that
// could escape the package directory
func packageName(analysisID string) (string, error) {
	if analysisID == "" || strings.ContainsAny(analysisID, "/\\") || strings.Contains(analysisID, "..") {
		return "", domain.ErrInvalidInput
	}
	return analysisID + ".zip", nil
}
