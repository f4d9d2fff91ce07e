package sharepoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// newFakeGraph serves canned Microsoft Graph responses for one site
func newFakeGraph(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch r.URL.Path {
		case "/sites/site-1":
			w.Write([]byte(`{"id": "site-1"}`))

		case "/sites/site-1/drive/root/children":
			w.Write([]byte(`{
				"value": [
					{
						"id": "item-1",
						"name": "Board Deck.pptx",
						"size": 4096,
						"webUrl": "https://sp.example/item-1",
						"lastModifiedDateTime": "2026-08-10T09:00:00Z",
						"file": {"mimeType": "application/vnd.ms-powerpoint"},
						"lastModifiedBy": {"user": {"displayName": "Ben"}},
						"parentReference": {"id": "root"}
					},
					{
						"id": "item-2",
						"name": "Archive",
						"size": 0,
						"folder": {"childCount": 3}
					}
				]
			}`))

		case "/sites/site-1/drive/items/item-1":
			w.Write([]byte(`{
				"id": "item-1",
				"name": "Board Deck.pptx",
				"size": 4096,
				"file": {"mimeType": "application/vnd.ms-powerpoint"}
			}`))

		case "/sites/site-1/drive/items/item-1/content":
			w.Write([]byte("deck bytes"))

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestConnector_Type(t *testing.T) {
	connector := NewConnector("test-token", "site-1", "")
	if connector.Type() != driven.ProviderSharePoint {
		t.Errorf("expected sharepoint, got %s", connector.Type())
	}
}

func TestConnector_ListFiles_SkipsFolders(t *testing.T) {
	server := newFakeGraph(t)
	defer server.Close()

	connector := NewConnector("test-token", "site-1", server.URL)

	files, err := connector.ListFiles(context.Background(), "")
	if err != nil {
		t.Fatalf("list files: %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("expected 1 file (folder skipped), got %d", len(files))
	}

	file := files[0]
	if file.ExternalID != "item-1" {
		t.Errorf("expected item-1, got %s", file.ExternalID)
	}
	if file.MimeType != "application/vnd.ms-powerpoint" {
		t.Errorf("unexpected mime type: %s", file.MimeType)
	}
	if file.ModifiedBy != "Ben" {
		t.Errorf("expected modifier Ben, got %s", file.ModifiedBy)
	}
	if file.FolderID != "root" {
		t.Errorf("expected parent root, got %s", file.FolderID)
	}
}

func TestConnector_FetchFile(t *testing.T) {
	server := newFakeGraph(t)
	defer server.Close()

	connector := NewConnector("test-token", "site-1", server.URL)

	data, meta, err := connector.FetchFile(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("fetch file: %v", err)
	}

	if string(data) != "deck bytes" {
		t.Errorf("unexpected content: %q", data)
	}
	if meta.Name != "Board Deck.pptx" {
		t.Errorf("unexpected name: %s", meta.Name)
	}
}

func TestConnector_TestConnection(t *testing.T) {
	server := newFakeGraph(t)
	defer server.Close()

	if err := NewConnector("test-token", "site-1", server.URL).TestConnection(context.Background()); err != nil {
		t.Errorf("expected connection test to pass: %v", err)
	}

	if err := NewConnector("bad-token", "site-1", server.URL).TestConnection(context.Background()); err == nil {
		t.Error("expected connection test to fail with bad token")
	}
}
