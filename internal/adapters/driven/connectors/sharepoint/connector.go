// Package sharepoint implements the SharePoint connector against the
// Microsoft Graph drive API using a pre-issued access token.
package sharepoint

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

const defaultBaseURL = "https://graph.microsoft.com/v1.0"

// maxFileSize caps downloads at 50 MB
const maxFileSize = 50 << 20

// Connector fetches documents from a SharePoint site's default drive
type Connector struct {
	accessToken string
	siteID      string
	baseURL     string
	httpClient  *http.Client
}

// NewConnector creates a SharePoint connector scoped to one site.
// baseURL overrides the Graph endpoint, mainly for tests.
func NewConnector(accessToken, siteID, baseURL string) *Connector {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Connector{
		accessToken: accessToken,
		siteID:      siteID,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Type returns the provider type
func (c *Connector) Type() driven.ProviderType {
	return driven.ProviderSharePoint
}

// driveItem is the Graph driveItem subset we consume
type driveItem struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Size                 int64     `json:"size"`
	WebURL               string    `json:"webUrl"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`

	File *struct {
		MimeType string `json:"mimeType"`
	} `json:"file"`

	Folder *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder"`

	LastModifiedBy *struct {
		User struct {
			DisplayName string `json:"displayName"`
		} `json:"user"`
	} `json:"lastModifiedBy"`

	ParentReference *struct {
		ID string `json:"id"`
	} `json:"parentReference"`

	DownloadURL string `json:"@microsoft.graph.downloadUrl"`
}

type itemListResponse struct {
	Value    []driveItem `json:"value"`
	NextLink string      `json:"@odata.nextLink"`
}

// ListFiles lists files under a folder in the site's default drive. An
// empty folderID lists the drive root. Subfolders are skipped; callers
// recurse explicitly with the folder IDs they care about.
func (c *Connector) ListFiles(ctx context.Context, folderID string) ([]*driven.RemoteFile, error) {
	path := fmt.Sprintf("/sites/%s/drive/root/children", url.PathEscape(c.siteID))
	if folderID != "" {
		path = fmt.Sprintf("/sites/%s/drive/items/%s/children", url.PathEscape(c.siteID), url.PathEscape(folderID))
	}

	var files []*driven.RemoteFile
	next := c.baseURL + path
	for next != "" {
		var page itemListResponse
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}

		for i := range page.Value {
			item := &page.Value[i]
			if item.Folder != nil {
				continue
			}
			files = append(files, toRemoteFile(item, folderID))
		}

		next = page.NextLink
	}

	return files, nil
}

// FetchFile downloads a file's raw bytes by external ID
func (c *Connector) FetchFile(ctx context.Context, externalID string) ([]byte, *driven.RemoteFile, error) {
	var item driveItem
	metaURL := fmt.Sprintf("%s/sites/%s/drive/items/%s", c.baseURL, url.PathEscape(c.siteID), url.PathEscape(externalID))
	if err := c.getJSON(ctx, metaURL, &item); err != nil {
		return nil, nil, err
	}

	resp, err := c.do(ctx, metaURL+"/content")
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("sharepoint download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize))
	if err != nil {
		return nil, nil, fmt.Errorf("read file body: %w", err)
	}

	return data, toRemoteFile(&item, ""), nil
}

// TestConnection verifies credentials and site access
func (c *Connector) TestConnection(ctx context.Context) error {
	var site struct {
		ID string `json:"id"`
	}
	siteURL := fmt.Sprintf("%s/sites/%s", c.baseURL, url.PathEscape(c.siteID))
	return c.getJSON(ctx, siteURL, &site)
}

func (c *Connector) getJSON(ctx context.Context, fullURL string, out interface{}) error {
	resp, err := c.do(ctx, fullURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("graph API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode graph response: %w", err)
	}
	return nil
}

func (c *Connector) do(ctx context.Context, fullURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph request failed: %w", err)
	}
	return resp, nil
}

func toRemoteFile(item *driveItem, folderID string) *driven.RemoteFile {
	remote := &driven.RemoteFile{
		ExternalID:  item.ID,
		Name:        item.Name,
		SizeBytes:   item.Size,
		WebURL:      item.WebURL,
		FolderID:    folderID,
		CanDownload: true,
	}
	if item.File != nil {
		remote.MimeType = item.File.MimeType
	}
	if folderID == "" && item.ParentReference != nil {
		remote.FolderID = item.ParentReference.ID
	}
	if !item.LastModifiedDateTime.IsZero() {
		t := item.LastModifiedDateTime
		remote.ModifiedAt = &t
	}
	if item.LastModifiedBy != nil {
		remote.ModifiedBy = item.LastModifiedBy.User.DisplayName
	}
	return remote
}
