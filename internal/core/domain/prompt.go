package domain

import "time"

// Criterion is one required check in a prompt pack. Name is matched
// case-insensitively against the readiness keyword taxonomy; Category is
// a free-text grouping label passed through unchanged.
type Criterion struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
}

// PromptPack is a version-controlled bundle of system instructions and
// the criteria a source bundle must satisfy before analysis proceeds
type PromptPack struct {
	ID string `json:"id"`

	// Version control
	VersionTag string `json:"version_tag"` // e.g. "v1.4-PM"
	UseCase    string `json:"use_case"`    // "post-mortem", "strategy", "decision"

	// Prompt content
	SystemPrompt string            `json:"system_prompt"`
	LogicBlocks  map[string]string `json:"logic_blocks,omitempty"` // Named sub-prompts

	// Readiness gating
	RequiredCriteria []Criterion `json:"required_criteria"`

	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
	Locked      bool   `json:"locked"` // Locked packs cannot be edited
	Active      bool   `json:"active"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeprecatedAt *time.Time `json:"deprecated_at,omitempty"`
}
