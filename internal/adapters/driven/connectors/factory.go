// Package connectors wires external document providers into the import
// flow. Each provider package implements driven.Connector; the factory
// is a plain registry since credentials are resolved at startup from
// configuration.
package connectors

import (
	"fmt"
	"sync"

	"github.com/decisionworks/rigor-core/internal/adapters/driven/connectors/googledrive"
	"github.com/decisionworks/rigor-core/internal/adapters/driven/connectors/sharepoint"
	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// Ensure Factory implements the interfaces
var (
	_ driven.ConnectorFactory = (*Factory)(nil)
	_ driven.ConnectorBuilder = (*Factory)(nil)
)

// Factory maintains a registry of configured connectors by provider type
type Factory struct {
	mu         sync.RWMutex
	connectors map[driven.ProviderType]driven.Connector
}

// NewFactory creates an empty connector factory
func NewFactory() *Factory {
	return &Factory{
		connectors: make(map[driven.ProviderType]driven.Connector),
	}
}

// Register registers a connector under its provider type
func (f *Factory) Register(connector driven.Connector) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectors[connector.Type()] = connector
}

// Create returns the connector for the given provider type
func (f *Factory) Create(providerType driven.ProviderType) (driven.Connector, error) {
	f.mu.RLock()
	connector, ok := f.connectors[providerType]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrConnectorNotFound, providerType)
	}
	return connector, nil
}

// Build constructs a connector from a stored integration's own
// credentials, independent of the process-wide registry.
func (f *Factory) Build(integration *domain.Integration) (driven.Connector, error) {
	creds := integration.Credentials
	switch driven.ProviderType(integration.Provider) {
	case driven.ProviderGoogleDrive:
		if creds["access_token"] == "" {
			return nil, fmt.Errorf("%w: missing access_token", domain.ErrInvalidInput)
		}
		return googledrive.NewConnector(creds["access_token"], creds["base_url"]), nil
	case driven.ProviderSharePoint:
		if creds["access_token"] == "" || creds["site_id"] == "" {
			return nil, fmt.Errorf("%w: missing access_token or site_id", domain.ErrInvalidInput)
		}
		return sharepoint.NewConnector(creds["access_token"], creds["site_id"], creds["base_url"]), nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrConnectorNotFound, integration.Provider)
}

// SupportedTypes returns all registered provider types
func (f *Factory) SupportedTypes() []driven.ProviderType {
	f.mu.RLock()
	defer f.mu.RUnlock()
	types := make([]driven.ProviderType, 0, len(f.connectors))
	for t := range f.connectors {
		types = append(types, t)
	}
	return types
}
