// Package rigor implements the scoring core: the rigor score calculator
// and the readiness engine. Both are deterministic pure functions over
// in-memory document records; neither performs I/O or mutates its inputs.
package rigor

import (
	"math"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// Component weights of the composite score
const (
	veracityWeight = 0.4
	conflictWeight = 0.3
	logicWeight    = 0.3
)

// maxSourceWeight is the theoretical per-document veracity maximum:
// authoritative (1.5) x pdf (1.0) x final (1.0) x recent (1.2)
const maxSourceWeight = 1.8

// sourceTypeWeights grades document formats by authority. Unknown types
// fall back to 0.5.
var sourceTypeWeights = map[domain.SourceType]float64{
	domain.SourceTypePDF:         1.0, // Final documents
	domain.SourceTypeDeck:        0.9, // Presentations
	domain.SourceTypeSpreadsheet: 0.8, // Data / analysis
	domain.SourceTypeTranscript:  0.6, // Meeting notes
	domain.SourceTypeWord:        0.5, // Draft documents
}

// statusWeights grades lifecycle stages. Unknown statuses fall back to 0.5.
var statusWeights = map[domain.SourceStatus]float64{
	domain.SourceStatusFinal:    1.0,
	domain.SourceStatusDraft:    0.5,
	domain.SourceStatusArchived: 0.3,
}

// conflictPenalties maps conflict severity to score deduction.
// Unrecognized severities count as medium.
var conflictPenalties = map[domain.ConflictSeverity]float64{
	domain.ConflictSeverityCritical: 15,
	domain.ConflictSeverityHigh:     10,
	domain.ConflictSeverityMedium:   5,
	domain.ConflictSeverityLow:      2,
}

// ScoreBreakdown carries the raw counts behind a score
type ScoreBreakdown struct {
	TotalSources         int     `json:"total_sources"`
	AuthoritativeSources int     `json:"authoritative_sources"`
	ConflictsDetected    int     `json:"conflicts_detected"`
	LogicDensity         float64 `json:"logic_density"` // Keyword matches per 1000 words
	TotalWords           int     `json:"total_words"`
	KeywordsFound        int     `json:"keywords_found"`
}

// ScoreResult is an immutable snapshot of one scoring run
type ScoreResult struct {
	RigorScore             float64        `json:"rigor_score"`
	SourceVeracityScore    float64        `json:"source_veracity_score"`
	ConflictDetectionScore float64        `json:"conflict_detection_score"`
	LogicPresenceScore     float64        `json:"logic_presence_score"`
	Breakdown              ScoreBreakdown `json:"breakdown"`
}

// Calculator computes the composite rigor score for a document bundle.
// It is stateless and safe for concurrent use.
type Calculator struct {
	now func() time.Time
}

// NewCalculator creates a Calculator
func NewCalculator() *Calculator {
	return &Calculator{now: time.Now}
}

// Calculate scores a set of documents against optional detected
// conflicts. An empty document set yields all-zero scores, never an
// error.
func (c *Calculator) Calculate(docs []domain.DocumentRecord, conflicts []domain.Conflict) ScoreResult {
	if len(docs) == 0 {
		return ScoreResult{}
	}

	veracity := c.sourceVeracity(docs)
	conflict := c.conflictDetection(conflicts)
	logic := c.logicPresence(docs)

	rigor := veracityWeight*veracity + conflictWeight*conflict + logicWeight*logic

	authoritative := 0
	totalWords := 0
	keywordsFound := 0
	for _, doc := range docs {
		if doc.IsAuthoritative {
			authoritative++
		}
		totalWords += doc.WordCount
		if doc.Content != "" {
			keywordsFound += countExecutiveKeywords(doc.Content)
		}
	}

	density := 0.0
	if totalWords > 0 {
		density = float64(keywordsFound) / float64(totalWords) * 1000
	}

	return ScoreResult{
		RigorScore:             round2(rigor),
		SourceVeracityScore:    round2(veracity),
		ConflictDetectionScore: round2(conflict),
		LogicPresenceScore:     round2(logic),
		Breakdown: ScoreBreakdown{
			TotalSources:         len(docs),
			AuthoritativeSources: authoritative,
			ConflictsDetected:    len(conflicts),
			LogicDensity:         round2(density),
			TotalWords:           totalWords,
			KeywordsFound:        keywordsFound,
		},
	}
}

// sourceVeracity rewards authoritative, final, high-fidelity, recent
// sources. Each document's weight is normalized against the theoretical
// maximum so the result reads as a percentage of a perfect corpus.
func (c *Calculator) sourceVeracity(docs []domain.DocumentRecord) float64 {
	totalWeight := 0.0
	for _, doc := range docs {
		authorityWeight := 1.0
		if doc.IsAuthoritative {
			authorityWeight = 1.5
		}

		typeWeight, ok := sourceTypeWeights[doc.SourceType]
		if !ok {
			typeWeight = 0.5
		}

		statusWeight, ok := statusWeights[doc.Status]
		if !ok {
			statusWeight = 0.5
		}

		totalWeight += authorityWeight * typeWeight * statusWeight * c.recencyFactor(doc.DocumentDate)
	}

	score := totalWeight / (float64(len(docs)) * maxSourceWeight) * 100
	return math.Min(score, 100.0)
}

// conflictDetection penalizes detected contradictions by severity.
// No conflicts means a perfect score.
func (c *Calculator) conflictDetection(conflicts []domain.Conflict) float64 {
	if len(conflicts) == 0 {
		return 100.0
	}

	totalPenalty := 0.0
	for _, conflict := range conflicts {
		penalty, ok := conflictPenalties[conflict.Severity]
		if !ok {
			penalty = conflictPenalties[domain.ConflictSeverityMedium]
		}
		totalPenalty += penalty
	}

	return math.Max(0, 100-totalPenalty)
}

// logicPresence rewards the density of executive reasoning keywords
// across document text. Documents without extractable text or a word
// count are excluded from both numerator and denominator.
func (c *Calculator) logicPresence(docs []domain.DocumentRecord) float64 {
	totalWords := 0
	totalMatches := 0
	docsWithLogic := 0

	for _, doc := range docs {
		if doc.Content == "" || doc.WordCount == 0 {
			continue
		}

		matches := countExecutiveKeywords(doc.Content)
		totalMatches += matches
		totalWords += doc.WordCount

		if matches > 0 {
			docsWithLogic++
		}
	}

	if totalWords == 0 {
		return 0.0
	}

	// Keyword density per 1000 words, boosted when matches are spread
	// across many documents rather than concentrated in one
	density := float64(totalMatches) / float64(totalWords) * 1000
	qualityMultiplier := float64(docsWithLogic) / float64(len(docs))

	return math.Min(100, density*10*(1+qualityMultiplier))
}

// recencyFactor boosts newer documents: <30 days 1.2x, <90 days 1.1x,
// <180 days 1.05x, otherwise (or with no date) 1.0x
func (c *Calculator) recencyFactor(documentDate *time.Time) float64 {
	if documentDate == nil {
		return 1.0
	}

	daysOld := c.now().Sub(*documentDate).Hours() / 24
	switch {
	case daysOld < 30:
		return 1.2
	case daysOld < 90:
		return 1.1
	case daysOld < 180:
		return 1.05
	default:
		return 1.0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
