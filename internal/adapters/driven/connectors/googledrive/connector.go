// Package googledrive implements the Google Drive connector against the
// Drive v3 REST API using a pre-issued access token.
package googledrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
)

// Ensure Connector implements the interface
var _ driven.Connector = (*Connector)(nil)

const defaultBaseURL = "https://www.googleapis.com/drive/v3"

// maxFileSize caps downloads at 50 MB
const maxFileSize = 50 << 20

// Connector fetches documents from Google Drive
type Connector struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// NewConnector creates a Google Drive connector. baseURL overrides the
// API endpoint, mainly for tests.
func NewConnector(accessToken, baseURL string) *Connector {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Connector{
		accessToken: accessToken,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Type returns the provider type
func (c *Connector) Type() driven.ProviderType {
	return driven.ProviderGoogleDrive
}

// driveFile is the Drive API file resource subset we consume
type driveFile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size,string"`
	WebViewLink  string    `json:"webViewLink"`
	ModifiedTime time.Time `json:"modifiedTime"`

	LastModifyingUser *struct {
		DisplayName string `json:"displayName"`
	} `json:"lastModifyingUser"`
	Parents []string `json:"parents"`

	Capabilities *struct {
		CanDownload bool `json:"canDownload"`
	} `json:"capabilities"`
}

type fileListResponse struct {
	Files         []driveFile `json:"files"`
	NextPageToken string      `json:"nextPageToken"`
}

const fileFields = "id,name,mimeType,size,webViewLink,modifiedTime,lastModifyingUser(displayName),parents,capabilities(canDownload)"

// ListFiles lists files under a folder. An empty folderID lists the
// user's Drive root.
func (c *Connector) ListFiles(ctx context.Context, folderID string) ([]*driven.RemoteFile, error) {
	if folderID == "" {
		folderID = "root"
	}

	var files []*driven.RemoteFile
	pageToken := ""
	for {
		params := url.Values{}
		params.Set("q", fmt.Sprintf("'%s' in parents and trashed = false", folderID))
		params.Set("fields", "nextPageToken,files("+fileFields+")")
		params.Set("pageSize", "100")
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page fileListResponse
		if err := c.getJSON(ctx, "/files?"+params.Encode(), &page); err != nil {
			return nil, err
		}

		for i := range page.Files {
			files = append(files, toRemoteFile(&page.Files[i], folderID))
		}

		if page.NextPageToken == "" {
			return files, nil
		}
		pageToken = page.NextPageToken
	}
}

// FetchFile downloads a file's raw bytes by external ID
func (c *Connector) FetchFile(ctx context.Context, externalID string) ([]byte, *driven.RemoteFile, error) {
	var meta driveFile
	path := fmt.Sprintf("/files/%s?fields=%s", url.PathEscape(externalID), url.QueryEscape(fileFields))
	if err := c.getJSON(ctx, path, &meta); err != nil {
		return nil, nil, err
	}

	resp, err := c.do(ctx, fmt.Sprintf("/files/%s?alt=media", url.PathEscape(externalID)))
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("drive download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize))
	if err != nil {
		return nil, nil, fmt.Errorf("read file body: %w", err)
	}

	return data, toRemoteFile(&meta, ""), nil
}

// TestConnection verifies credentials against the provider
func (c *Connector) TestConnection(ctx context.Context) error {
	var about struct {
		User struct {
			DisplayName string `json:"displayName"`
		} `json:"user"`
	}
	return c.getJSON(ctx, "/about?fields=user(displayName)", &about)
}

func (c *Connector) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.do(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("drive API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode drive response: %w", err)
	}
	return nil
}

func (c *Connector) do(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drive request failed: %w", err)
	}
	return resp, nil
}

func toRemoteFile(f *driveFile, folderID string) *driven.RemoteFile {
	remote := &driven.RemoteFile{
		ExternalID: f.ID,
		Name:       f.Name,
		MimeType:   f.MimeType,
		SizeBytes:  f.Size,
		WebURL:     f.WebViewLink,
		FolderID:   folderID,
		// Files without capabilities are treated as downloadable
		CanDownload: f.Capabilities == nil || f.Capabilities.CanDownload,
	}
	if folderID == "" && len(f.Parents) > 0 {
		remote.FolderID = f.Parents[0]
	}
	if !f.ModifiedTime.IsZero() {
		t := f.ModifiedTime
		remote.ModifiedAt = &t
	}
	if f.LastModifyingUser != nil {
		remote.ModifiedBy = f.LastModifyingUser.DisplayName
	}
	return remote
}
