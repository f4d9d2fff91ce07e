package domain

import "time"

// SyncStatus records the outcome of an integration's most recent sync
type SyncStatus string

const (
	SyncStatusNever   SyncStatus = "not_synced"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusPartial SyncStatus = "partial"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncJobStatus tracks a sync job's lifecycle
type SyncJobStatus string

const (
	SyncJobRunning   SyncJobStatus = "running"
	SyncJobCompleted SyncJobStatus = "completed"
	SyncJobFailed    SyncJobStatus = "failed"
)

// Integration is a stored connection to an external document provider.
// Credentials are held server-side and never serialized in responses.
type Integration struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"` // 'google_drive' or 'sharepoint'
	WorkspaceID string `json:"workspace_id"`

	Credentials map[string]string `json:"-"`
	Settings    map[string]string `json:"settings,omitempty"` // Provider-specific, e.g. folder_id

	Active         bool       `json:"active"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	LastSyncStatus SyncStatus `json:"last_sync_status,omitempty"`
	LastError      string     `json:"last_error,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SyncJob records one bulk-import run against an integration
type SyncJob struct {
	ID            string        `json:"id"`
	IntegrationID string        `json:"integration_id"`
	JobType       string        `json:"job_type"` // 'manual' or 'full_sync'
	Status        SyncJobStatus `json:"status"`

	TotalFiles    int `json:"total_files"`
	ImportedFiles int `json:"imported_files"`
	SkippedFiles  int `json:"skipped_files"`
	FailedFiles   int `json:"failed_files"`

	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
