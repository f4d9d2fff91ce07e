package ingest

import (
	"regexp"
	"strings"
)

var (
	// [01:23:45] or [01:23] style inline timestamps
	timestampPattern = regexp.MustCompile(`\[\d{2}:\d{2}(?::\d{2})?\]`)

	// 00:01:23.000 --> 00:01:25.000 WebVTT cue lines
	cuePattern = regexp.MustCompile(`(?m)^\d{2}:\d{2}:\d{2}[.,]\d{3}\s*-->\s*\d{2}:\d{2}:\d{2}[.,]\d{3}.*$`)

	// "Speaker Name:" labels at line start, up to three words
	speakerPattern = regexp.MustCompile(`(?m)^\s*[A-Z][\w.'-]*(?:\s+[A-Z][\w.'-]*){0,2}\s*:\s*`)

	multiBlank = regexp.MustCompile(`\n{3,}`)
)

// CleanTranscript strips timestamps, WebVTT cue lines, and speaker
// labels from transcript text, leaving the spoken content
func CleanTranscript(text string) string {
	text = strings.TrimPrefix(text, "WEBVTT")
	text = cuePattern.ReplaceAllString(text, "")
	text = timestampPattern.ReplaceAllString(text, "")
	text = speakerPattern.ReplaceAllString(text, "")

	// Drop bare sequence numbers left over from SRT cues
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if isSequenceNumber(trimmed) {
			continue
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	text = strings.Join(lines, "\n")

	text = multiBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func isSequenceNumber(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
