// Package ingest turns raw document uploads into scored-ready sources:
// type detection, content hashing, text extraction, and word counting.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// Extractor pulls plain text out of one document format
type Extractor interface {
	// Extract extracts plain text from raw data
	Extract(data []byte) (string, error)

	// SupportedTypes returns the source types this extractor handles
	SupportedTypes() []domain.SourceType
}

// Registry selects extractors by source type. Later registrations for
// the same type win.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.SourceType]Extractor
}

// NewRegistry creates an empty extractor registry
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[domain.SourceType]Extractor),
	}
}

// Register registers an extractor for each of its supported types
func (r *Registry) Register(extractor Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range extractor.SupportedTypes() {
		r.extractors[t] = extractor
	}
}

// Get retrieves the extractor for a source type. Returns nil when none
// is registered.
func (r *Registry) Get(sourceType domain.SourceType) Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extractors[sourceType]
}

// Result is the outcome of processing one upload
type Result struct {
	SourceType domain.SourceType
	Content    string
	WordCount  int
	FileHash   string
	SizeBytes  int64
}

// Processor runs the full ingest pipeline over raw uploads
type Processor struct {
	registry *Registry
}

// NewProcessor creates a Processor with the default extractors registered
func NewProcessor() *Processor {
	registry := NewRegistry()
	registry.Register(&TextExtractor{})
	registry.Register(&TranscriptExtractor{})
	registry.Register(&BinaryExtractor{})
	return &Processor{registry: registry}
}

// NewProcessorWithRegistry creates a Processor with a caller-provided
// registry
func NewProcessorWithRegistry(registry *Registry) *Processor {
	return &Processor{registry: registry}
}

// Process hashes the upload, detects its type when not declared, and
// extracts text. Unsupported formats yield empty content and a zero
// word count; the source is still stored with its metadata.
func (p *Processor) Process(fileName string, data []byte, declaredType domain.SourceType) (Result, error) {
	sourceType := declaredType
	if sourceType == "" || sourceType == domain.SourceTypeUnknown {
		sourceType = DetectType(fileName)
	}

	sum := sha256.Sum256(data)
	result := Result{
		SourceType: sourceType,
		FileHash:   hex.EncodeToString(sum[:]),
		SizeBytes:  int64(len(data)),
	}

	extractor := p.registry.Get(sourceType)
	if extractor == nil {
		return result, nil
	}

	content, err := extractor.Extract(data)
	if err != nil {
		return result, err
	}

	result.Content = content
	result.WordCount = CountWords(content)
	return result, nil
}

// TextExtractor handles plain text formats
type TextExtractor struct{}

func (e *TextExtractor) Extract(data []byte) (string, error) {
	return normalizeText(string(data)), nil
}

func (e *TextExtractor) SupportedTypes() []domain.SourceType {
	return []domain.SourceType{domain.SourceTypeText}
}

// TranscriptExtractor handles meeting transcripts: plain text extraction
// followed by timestamp and speaker label cleanup
type TranscriptExtractor struct{}

func (e *TranscriptExtractor) Extract(data []byte) (string, error) {
	return CleanTranscript(normalizeText(string(data))), nil
}

func (e *TranscriptExtractor) SupportedTypes() []domain.SourceType {
	return []domain.SourceType{domain.SourceTypeTranscript}
}

// BinaryExtractor is the fallback for binary office formats: it keeps
// printable runs long enough to look like prose and drops the rest.
// Real fidelity requires format-specific parsing upstream of upload.
type BinaryExtractor struct{}

const minRunLength = 4

func (e *BinaryExtractor) Extract(data []byte) (string, error) {
	if utf8.Valid(data) && isMostlyPrintable(data) {
		return normalizeText(string(data)), nil
	}

	var b strings.Builder
	var run []rune
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r != utf8.RuneError && (unicode.IsPrint(r) || r == '\n') {
			run = append(run, r)
			continue
		}
		if len(run) >= minRunLength {
			b.WriteString(string(run))
			b.WriteByte(' ')
		}
		run = run[:0]
	}
	if len(run) >= minRunLength {
		b.WriteString(string(run))
	}

	return normalizeText(b.String()), nil
}

func (e *BinaryExtractor) SupportedTypes() []domain.SourceType {
	return []domain.SourceType{
		domain.SourceTypePDF,
		domain.SourceTypeDeck,
		domain.SourceTypeSpreadsheet,
		domain.SourceTypeWord,
	}
}

func isMostlyPrintable(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	printable := 0
	total := 0
	for _, r := range string(data) {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	return float64(printable)/float64(total) > 0.9
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}
