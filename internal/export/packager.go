// Package export builds the handoff package for an external LLM: the
// pinned system prompt, the source texts, and a metadata manifest, all
// in one ZIP archive. The platform itself never calls a model with this
// content.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// citationInstructions is appended to the system prompt when the caller
// asks for cited output
const citationInstructions = "\n\nCITATION REQUIREMENTS:\nEvery claim in your response must cite the source document it is drawn from, using the file names in the sources/ directory. Flag any claim you cannot ground in a source as UNSUPPORTED."

// Manifest is the metadata.json payload describing the package contents
type Manifest struct {
	AnalysisID    string    `json:"analysis_id"`
	AnalysisName  string    `json:"analysis_name"`
	AnalysisType  string    `json:"analysis_type"`
	PromptVersion string    `json:"prompt_version"`
	RigorScore    *float64  `json:"rigor_score,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`

	Sources []ManifestSource `json:"sources"`
}

// ManifestSource describes one source in the package
type ManifestSource struct {
	ID              string `json:"id"`
	FileName        string `json:"file_name"`
	Title           string `json:"title"`
	SourceType      string `json:"source_type"`
	Status          string `json:"status"`
	IsAuthoritative bool   `json:"is_authoritative"`
	WordCount       int    `json:"word_count"`
	Author          string `json:"author,omitempty"`
	Version         string `json:"version,omitempty"`
}

// Package is a built export archive
type Package struct {
	Data      []byte
	FileCount int
}

// Packager assembles export archives. Stateless.
type Packager struct {
	now func() time.Time
}

// NewPackager creates a Packager
func NewPackager() *Packager {
	return &Packager{now: time.Now}
}

// Build assembles the ZIP archive for an analysis. Purged sources are
// listed in the manifest but contribute no content file.
func (p *Packager) Build(analysis *domain.Analysis, pack *domain.PromptPack, sources []*domain.Source, includeCitations bool) (*Package, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	fileCount := 0
	manifest := Manifest{
		AnalysisID:    analysis.ID,
		AnalysisName:  analysis.Name,
		AnalysisType:  string(analysis.Type),
		PromptVersion: analysis.PromptVersion,
		RigorScore:    analysis.RigorScore,
		GeneratedAt:   p.now(),
	}

	prompt := pack.SystemPrompt
	if len(pack.LogicBlocks) > 0 {
		// Stable block order so repeated exports of the same analysis
		// produce identical archives
		names := make([]string, 0, len(pack.LogicBlocks))
		for name := range pack.LogicBlocks {
			names = append(names, name)
		}
		sort.Strings(names)

		blocks := make([]string, 0, len(names))
		for _, name := range names {
			blocks = append(blocks, fmt.Sprintf("## %s\n%s", name, pack.LogicBlocks[name]))
		}
		prompt += "\n\n" + strings.Join(blocks, "\n\n")
	}
	if includeCitations {
		prompt += citationInstructions
	}

	if err := writeFile(w, "system_prompt.txt", []byte(prompt)); err != nil {
		return nil, err
	}
	fileCount++

	for i, source := range sources {
		fileName := fmt.Sprintf("sources/%02d_%s.txt", i+1, sanitizeName(source.Title))
		manifest.Sources = append(manifest.Sources, ManifestSource{
			ID:              source.ID,
			FileName:        fileName,
			Title:           source.Title,
			SourceType:      string(source.SourceType),
			Status:          string(source.Status),
			IsAuthoritative: source.IsAuthoritative,
			WordCount:       source.WordCount,
			Author:          source.Author,
			Version:         source.Version,
		})

		if source.ContentPurged || source.Content == "" {
			continue
		}
		if err := writeFile(w, fileName, []byte(source.Content)); err != nil {
			return nil, err
		}
		fileCount++
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := writeFile(w, "metadata.json", manifestJSON); err != nil {
		return nil, err
	}
	fileCount++

	if err := writeFile(w, "README.md", []byte(p.readme(analysis, len(sources)))); err != nil {
		return nil, err
	}
	fileCount++

	if err := w.Close(); err != nil {
		return nil, err
	}

	return &Package{Data: buf.Bytes(), FileCount: fileCount}, nil
}

func (p *Packager) readme(analysis *domain.Analysis, sourceCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Export package: %s\n\n", analysis.Name)
	fmt.Fprintf(&b, "Generated %s for a %s analysis.\n\n", p.now().Format("2006-01-02"), analysis.Type)
	fmt.Fprintf(&b, "Contents:\n\n")
	fmt.Fprintf(&b, "- `system_prompt.txt` - paste this as the system prompt\n")
	fmt.Fprintf(&b, "- `sources/` - %d source documents as plain text\n", sourceCount)
	fmt.Fprintf(&b, "- `metadata.json` - source provenance and scoring context\n\n")
	b.WriteString("Attach the source files alongside the prompt. Sources marked purged in the manifest carry metadata only.\n")
	return b.String()
}

func writeFile(w *zip.Writer, name string, data []byte) error {
	f, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}

// sanitizeName makes a title safe for use as a file name
func sanitizeName(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "untitled"
	}
	if len(name) > 60 {
		name = name[:60]
	}
	return name
}
