package domain

import "time"

// Visibility controls who can see a workspace's contents
type Visibility string

const (
	VisibilityBoard        Visibility = "board"        // Board-level, strictest retention
	VisibilityInternal     Visibility = "internal"     // Default
	VisibilityConfidential Visibility = "confidential" // Restricted membership
)

// Workspace segregates sources and analyses by organizational context
type Workspace struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Visibility  Visibility `json:"visibility"`
	CreatedBy   string     `json:"created_by"` // User ID of creator
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// WorkspaceSummary provides a workspace with aggregate counts
type WorkspaceSummary struct {
	Workspace     *Workspace `json:"workspace"`
	SourceCount   int        `json:"source_count"`
	AnalysisCount int        `json:"analysis_count"`
}
