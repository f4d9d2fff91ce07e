package domain

import "time"

// SourceType classifies a document by its original format
type SourceType string

const (
	SourceTypePDF         SourceType = "pdf"
	SourceTypeDeck        SourceType = "deck"
	SourceTypeSpreadsheet SourceType = "spreadsheet"
	SourceTypeTranscript  SourceType = "transcript"
	SourceTypeWord        SourceType = "word"
	SourceTypeText        SourceType = "text"
	SourceTypeUnknown     SourceType = "unknown"
)

// SourceStatus tracks a document's lifecycle stage
type SourceStatus string

const (
	SourceStatusDraft    SourceStatus = "draft"
	SourceStatusFinal    SourceStatus = "final"
	SourceStatusArchived SourceStatus = "archived"
)

// Source represents one document backing an analysis: metadata plus
// extracted plain text
type Source struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`

	// Document metadata
	Title      string       `json:"title"`
	SourceType SourceType   `json:"source_type"`
	Status     SourceStatus `json:"status"`

	// Provenance and authority
	IsAuthoritative bool   `json:"is_authoritative"`
	Version         string `json:"version,omitempty"`
	Author          string `json:"author,omitempty"`
	Department      string `json:"department,omitempty"`
	UploadedBy      string `json:"uploaded_by,omitempty"`

	// File details
	FilePath      string `json:"file_path,omitempty"`
	FileSizeBytes int64  `json:"file_size_bytes,omitempty"`
	FileHash      string `json:"file_hash,omitempty"` // SHA-256 of the raw upload

	// Content analysis
	Content   string `json:"-"` // Extracted plain text, never serialized in listings
	WordCount int    `json:"word_count"`
	PageCount int    `json:"page_count,omitempty"`
	Language  string `json:"language,omitempty"`

	// External integration
	ExternalURL  string `json:"external_url,omitempty"`
	DriveID      string `json:"drive_id,omitempty"`
	SharePointID string `json:"sharepoint_id,omitempty"`

	// Compliance
	ContainsPII   bool       `json:"contains_pii"`
	ContentPurged bool       `json:"content_purged"`
	PurgedAt      *time.Time `json:"purged_at,omitempty"`

	// Timestamps
	DocumentDate *time.Time `json:"document_date,omitempty"`
	UploadedAt   time.Time  `json:"uploaded_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// DocumentRecord is the read-only view of a source consumed by the
// scoring engines. WordCount of zero excludes the document from all
// density denominators.
type DocumentRecord struct {
	ID              string
	Title           string
	SourceType      SourceType
	Status          SourceStatus
	IsAuthoritative bool
	DocumentDate    *time.Time
	WordCount       int
	Content         string
}

// ToRecord converts a source to the engine input shape
func (s *Source) ToRecord() DocumentRecord {
	return DocumentRecord{
		ID:              s.ID,
		Title:           s.Title,
		SourceType:      s.SourceType,
		Status:          s.Status,
		IsAuthoritative: s.IsAuthoritative,
		DocumentDate:    s.DocumentDate,
		WordCount:       s.WordCount,
		Content:         s.Content,
	}
}
