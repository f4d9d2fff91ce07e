package rigor

import (
	"context"
	"fmt"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// readyThreshold is the readiness score (percent of criteria passed)
// required before analysis may proceed. Tunable constant.
const readyThreshold = 80.0

// lowConfidence marks checks whose confidence should trigger a warning
const lowConfidence = 0.6

// minRecommendedSources is the bundle size below which a warning fires
const minRecommendedSources = 3

// ReadinessResult is the outcome of scanning a document bundle against
// a prompt pack's required criteria
type ReadinessResult struct {
	IsReady         bool          `json:"is_ready"`
	ReadinessScore  float64       `json:"readiness_score"`
	ChecksPassed    int           `json:"checks_passed"`
	ChecksTotal     int           `json:"checks_total"`
	Checks          []CheckResult `json:"checks"`
	MissingCriteria []string      `json:"missing_criteria"`
	Warnings        []string      `json:"warnings"`
}

// Engine scans source bundles against prompt pack criteria. The
// per-criterion strategy is pluggable; aggregation is fixed. Stateless
// apart from the injected checker.
type Engine struct {
	checker CriterionChecker
}

// NewEngine creates an Engine with the given criterion checker
func NewEngine(checker CriterionChecker) *Engine {
	return &Engine{checker: checker}
}

// NewDefaultEngine creates an Engine with the deterministic rule-based
// checker
func NewDefaultEngine() *Engine {
	return NewEngine(NewRuleChecker())
}

// ScanSources checks every required criterion of the pack against the
// document bundle and aggregates the results. A pack with no criteria
// is treated as ready with a full score and a warning; this mirrors the
// historical default-fallback policy rather than treating it as a
// configuration error.
func (e *Engine) ScanSources(ctx context.Context, docs []domain.DocumentRecord, pack *domain.PromptPack) ReadinessResult {
	var criteria []domain.Criterion
	if pack != nil {
		criteria = pack.RequiredCriteria
	}

	if len(criteria) == 0 {
		return ReadinessResult{
			IsReady:         true,
			ReadinessScore:  100.0,
			Checks:          []CheckResult{},
			MissingCriteria: []string{},
			Warnings:        []string{"No required criteria defined in prompt pack"},
		}
	}

	checks := make([]CheckResult, 0, len(criteria))
	for _, criterion := range criteria {
		result, err := e.checker.Check(ctx, criterion, docs)
		if err != nil {
			// A failing checker degrades to a failed, zero-confidence
			// check rather than aborting the scan
			result = CheckResult{
				CriterionName:     criterion.Name,
				CriterionCategory: criterion.Category,
				Status:            false,
				Confidence:        0,
				Reasoning:         fmt.Sprintf("Check could not be completed: %v", err),
				EvidenceSourceIDs: []string{},
				EvidenceSnippets:  []string{},
			}
		}
		checks = append(checks, result)
	}

	passed := 0
	missing := []string{}
	for _, check := range checks {
		if check.Status {
			passed++
		} else {
			missing = append(missing, check.CriterionName)
		}
	}

	score := float64(passed) / float64(len(checks)) * 100

	return ReadinessResult{
		IsReady:         score >= readyThreshold,
		ReadinessScore:  round2(score),
		ChecksPassed:    passed,
		ChecksTotal:     len(checks),
		Checks:          checks,
		MissingCriteria: missing,
		Warnings:        generateWarnings(checks, docs),
	}
}

// generateWarnings inspects checks and the bundle for advisory
// conditions. Warnings are independent; any subset may fire.
func generateWarnings(checks []CheckResult, docs []domain.DocumentRecord) []string {
	warnings := []string{}

	authoritative := 0
	for _, doc := range docs {
		if doc.IsAuthoritative {
			authoritative++
		}
	}
	if authoritative == 0 {
		warnings = append(warnings, "No authoritative sources found. Consider marking final documents as authoritative.")
	}

	failed := 0
	lowConfidenceChecks := 0
	for _, check := range checks {
		if !check.Status {
			failed++
		}
		if check.Confidence < lowConfidence {
			lowConfidenceChecks++
		}
	}
	if float64(failed) > float64(len(checks))*0.5 {
		warnings = append(warnings, fmt.Sprintf("%d criteria checks failed. Analysis may lack sufficient documentation.", failed))
	}
	if lowConfidenceChecks > 0 {
		warnings = append(warnings, fmt.Sprintf("%d checks have low confidence scores.", lowConfidenceChecks))
	}

	if len(docs) < minRecommendedSources {
		warnings = append(warnings, "Few sources provided. Consider adding more documentation for comprehensive analysis.")
	}

	return warnings
}
