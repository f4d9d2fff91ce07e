package ingest

import (
	"path/filepath"
	"strings"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// extensionTypes maps file extensions to source types
var extensionTypes = map[string]domain.SourceType{
	".pdf":  domain.SourceTypePDF,
	".ppt":  domain.SourceTypeDeck,
	".pptx": domain.SourceTypeDeck,
	".key":  domain.SourceTypeDeck,
	".xls":  domain.SourceTypeSpreadsheet,
	".xlsx": domain.SourceTypeSpreadsheet,
	".csv":  domain.SourceTypeSpreadsheet,
	".vtt":  domain.SourceTypeTranscript,
	".srt":  domain.SourceTypeTranscript,
	".doc":  domain.SourceTypeWord,
	".docx": domain.SourceTypeWord,
	".txt":  domain.SourceTypeText,
	".md":   domain.SourceTypeText,
}

// transcriptHints are file name fragments that mark a text file as a
// meeting transcript
var transcriptHints = []string{"transcript", "meeting", "recording", "minutes"}

// DetectType infers a source type from the file name. Text files whose
// names suggest a meeting record are classified as transcripts.
func DetectType(fileName string) domain.SourceType {
	ext := strings.ToLower(filepath.Ext(fileName))
	detected, ok := extensionTypes[ext]
	if !ok {
		return domain.SourceTypeUnknown
	}

	if detected == domain.SourceTypeText {
		lower := strings.ToLower(fileName)
		for _, hint := range transcriptHints {
			if strings.Contains(lower, hint) {
				return domain.SourceTypeTranscript
			}
		}
	}

	return detected
}

// CountWords counts whitespace-delimited tokens
func CountWords(text string) int {
	return len(strings.Fields(text))
}
