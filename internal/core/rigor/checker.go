package rigor

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// maxEvidence caps the number of evidence documents and snippets
// reported per check
const maxEvidence = 3

// minMatchesForPass is the number of keyword matches a bundle needs
// before a criterion counts as satisfied. Tunable, not a law of nature.
const minMatchesForPass = 2

// CheckResult is the outcome of evaluating one criterion against a
// document bundle
type CheckResult struct {
	CriterionName     string   `json:"criterion_name"`
	CriterionCategory string   `json:"criterion_category,omitempty"`
	Status            bool     `json:"status"`
	Confidence        float64  `json:"confidence_score"` // 0-1.0
	Reasoning         string   `json:"reasoning"`
	EvidenceSourceIDs []string `json:"evidence_source_ids"`
	EvidenceSnippets  []string `json:"evidence_snippets"`
}

// CriterionChecker decides whether a document bundle satisfies one
// criterion. The rule-based implementation is deterministic; an
// LLM-backed implementation may be substituted without changing the
// aggregation logic in Engine.
type CriterionChecker interface {
	Check(ctx context.Context, criterion domain.Criterion, docs []domain.DocumentRecord) (CheckResult, error)
}

// RuleChecker is the default CriterionChecker: it maps the criterion
// name to a keyword bucket and counts occurrences of those keywords in
// document titles and content. Stateless and safe for concurrent use.
type RuleChecker struct{}

// NewRuleChecker creates a RuleChecker
func NewRuleChecker() *RuleChecker {
	return &RuleChecker{}
}

// Check evaluates one criterion by keyword evidence. Never returns an
// error.
func (rc *RuleChecker) Check(_ context.Context, criterion domain.Criterion, docs []domain.DocumentRecord) (CheckResult, error) {
	keywords := bucketKeywords(criterion.Name)

	var evidenceIDs []string
	var evidenceSnippets []string
	totalMatches := 0
	matchedDocs := 0

	for _, doc := range docs {
		matches := countKeywordOccurrences(doc, keywords)
		if matches == 0 {
			continue
		}

		totalMatches += matches
		matchedDocs++
		if len(evidenceIDs) < maxEvidence {
			evidenceIDs = append(evidenceIDs, doc.ID)
			title := doc.Title
			if title == "" {
				title = "document"
			}
			evidenceSnippets = append(evidenceSnippets, fmt.Sprintf("Found %d relevant terms in %s", matches, title))
		}
	}

	status := totalMatches >= minMatchesForPass
	confidence := math.Min(0.95, 0.5+float64(totalMatches)*0.1)

	verdict := "Insufficient evidence for this criterion."
	if status {
		verdict = "Criterion appears to be met."
	}
	reasoning := fmt.Sprintf("Found %d relevant indicators across %d source(s). %s",
		totalMatches, matchedDocs, verdict)

	return CheckResult{
		CriterionName:     criterion.Name,
		CriterionCategory: criterion.Category,
		Status:            status,
		Confidence:        round2(confidence),
		Reasoning:         reasoning,
		EvidenceSourceIDs: evidenceIDs,
		EvidenceSnippets:  evidenceSnippets,
	}, nil
}

// countKeywordOccurrences counts case-insensitive substring occurrences
// of each keyword in the document's content and title. Every occurrence
// counts, not just keyword presence.
func countKeywordOccurrences(doc domain.DocumentRecord, keywords []string) int {
	content := strings.ToLower(doc.Content)
	title := strings.ToLower(doc.Title)

	total := 0
	for _, kw := range keywords {
		total += strings.Count(content, kw)
		total += strings.Count(title, kw)
	}
	return total
}
