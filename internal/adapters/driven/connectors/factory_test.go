package connectors

import (
	"errors"
	"testing"

	"github.com/decisionworks/rigor-core/internal/adapters/driven/connectors/googledrive"
	"github.com/decisionworks/rigor-core/internal/adapters/driven/connectors/sharepoint"
	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

func TestFactory_CreateAndSupportedTypes(t *testing.T) {
	factory := NewFactory()
	factory.Register(googledrive.NewConnector("token", ""))
	factory.Register(sharepoint.NewConnector("token", "site-1", ""))

	drive, err := factory.Create(driven.ProviderGoogleDrive)
	if err != nil {
		t.Fatalf("create google drive: %v", err)
	}
	if drive.Type() != driven.ProviderGoogleDrive {
		t.Errorf("expected google_drive, got %s", drive.Type())
	}

	sp, err := factory.Create(driven.ProviderSharePoint)
	if err != nil {
		t.Fatalf("create sharepoint: %v", err)
	}
	if sp.Type() != driven.ProviderSharePoint {
		t.Errorf("expected sharepoint, got %s", sp.Type())
	}

	if len(factory.SupportedTypes()) != 2 {
		t.Errorf("expected 2 supported types, got %v", factory.SupportedTypes())
	}
}

func TestFactory_Create_Unregistered(t *testing.T) {
	factory := NewFactory()

	_, err := factory.Create(driven.ProviderGoogleDrive)
	if !errors.Is(err, domain.ErrConnectorNotFound) {
		t.Errorf("expected ErrConnectorNotFound, got %v", err)
	}
}

func TestFactory_Build(t *testing.T) {
	factory := NewFactory()

	drive, err := factory.Build(&domain.Integration{
		Provider:    string(driven.ProviderGoogleDrive),
		Credentials: map[string]string{"access_token": "tok"},
	})
	if err != nil {
		t.Fatalf("build google drive: %v", err)
	}
	if drive.Type() != driven.ProviderGoogleDrive {
		t.Errorf("expected google_drive, got %s", drive.Type())
	}

	sp, err := factory.Build(&domain.Integration{
		Provider:    string(driven.ProviderSharePoint),
		Credentials: map[string]string{"access_token": "tok", "site_id": "site-1"},
	})
	if err != nil {
		t.Fatalf("build sharepoint: %v", err)
	}
	if sp.Type() != driven.ProviderSharePoint {
		t.Errorf("expected sharepoint, got %s", sp.Type())
	}
}

func TestFactory_Build_MissingCredentials(t *testing.T) {
	factory := NewFactory()

	_, err := factory.Build(&domain.Integration{
		Provider:    string(driven.ProviderGoogleDrive),
		Credentials: map[string]string{},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	_, err = factory.Build(&domain.Integration{
		Provider:    string(driven.ProviderSharePoint),
		Credentials: map[string]string{"access_token": "tok"},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing site_id, got %v", err)
	}
}

func TestFactory_Build_UnknownProvider(t *testing.T) {
	factory := NewFactory()

	_, err := factory.Build(&domain.Integration{
		Provider:    "dropbox",
		Credentials: map[string]string{"access_token": "tok"},
	})
	if !errors.Is(err, domain.ErrConnectorNotFound) {
		t.Errorf("expected ErrConnectorNotFound, got %v", err)
	}
}
