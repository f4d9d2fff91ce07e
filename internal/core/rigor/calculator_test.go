package rigor

import (
	"testing"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestCalculator_Calculate_EmptyDocuments(t *testing.T) {
	calc := NewCalculator()

	result := calc.Calculate(nil, nil)

	assert.Equal(t, 0.0, result.RigorScore)
	assert.Equal(t, 0.0, result.SourceVeracityScore)
	assert.Equal(t, 0.0, result.ConflictDetectionScore)
	assert.Equal(t, 0.0, result.LogicPresenceScore)
	assert.Equal(t, 0, result.Breakdown.TotalSources)
	assert.Equal(t, 0, result.Breakdown.AuthoritativeSources)
	assert.Equal(t, 0, result.Breakdown.ConflictsDetected)
	assert.Equal(t, 0.0, result.Breakdown.LogicDensity)
}

func TestCalculator_Calculate_PerfectSingleDocument(t *testing.T) {
	// Authoritative final PDF dated yesterday with 4 keyword matches in
	// 1000 words: V=100, C=100, L=min(100, 4*10*(1+1))=80, rigor=94
	calc := NewCalculator()

	docs := []domain.DocumentRecord{
		{
			ID:              "doc-1",
			Title:           "Q3 Strategy",
			SourceType:      domain.SourceTypePDF,
			Status:          domain.SourceStatusFinal,
			IsAuthoritative: true,
			DocumentDate:    timePtr(time.Now().Add(-24 * time.Hour)),
			WordCount:       1000,
			Content:         "risk mitigation constraint assumption",
		},
	}

	result := calc.Calculate(docs, nil)

	assert.Equal(t, 100.0, result.SourceVeracityScore)
	assert.Equal(t, 100.0, result.ConflictDetectionScore)
	assert.Equal(t, 80.0, result.LogicPresenceScore)
	assert.Equal(t, 94.0, result.RigorScore)
	assert.Equal(t, 4, result.Breakdown.KeywordsFound)
	assert.Equal(t, 4.0, result.Breakdown.LogicDensity)
	assert.Equal(t, 1, result.Breakdown.AuthoritativeSources)
}

func TestCalculator_Calculate_ScoresWithinBounds(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name      string
		docs      []domain.DocumentRecord
		conflicts []domain.Conflict
	}{
		{
			name: "dense keywords clamp logic at 100",
			docs: []domain.DocumentRecord{
				{ID: "a", SourceType: domain.SourceTypePDF, Status: domain.SourceStatusFinal,
					WordCount: 10, Content: "risk risk risk risk risk risk risk risk risk risk"},
			},
		},
		{
			name: "many critical conflicts clamp conflict at 0",
			docs: []domain.DocumentRecord{
				{ID: "a", SourceType: domain.SourceTypeWord, Status: domain.SourceStatusDraft, WordCount: 50},
			},
			conflicts: []domain.Conflict{
				{Severity: domain.ConflictSeverityCritical},
				{Severity: domain.ConflictSeverityCritical},
				{Severity: domain.ConflictSeverityCritical},
				{Severity: domain.ConflictSeverityCritical},
				{Severity: domain.ConflictSeverityCritical},
				{Severity: domain.ConflictSeverityCritical},
				{Severity: domain.ConflictSeverityCritical},
			},
		},
		{
			name: "unknown enums degrade to defaults",
			docs: []domain.DocumentRecord{
				{ID: "a", SourceType: "hologram", Status: "quantum", WordCount: 100, Content: "evidence"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calc.Calculate(tt.docs, tt.conflicts)

			for name, score := range map[string]float64{
				"rigor":    result.RigorScore,
				"veracity": result.SourceVeracityScore,
				"conflict": result.ConflictDetectionScore,
				"logic":    result.LogicPresenceScore,
			} {
				assert.GreaterOrEqual(t, score, 0.0, "%s score below 0", name)
				assert.LessOrEqual(t, score, 100.0, "%s score above 100", name)
			}
		})
	}
}

func TestCalculator_ConflictPenalties(t *testing.T) {
	calc := NewCalculator()
	docs := []domain.DocumentRecord{
		{ID: "a", SourceType: domain.SourceTypePDF, Status: domain.SourceStatusFinal, WordCount: 100},
	}

	baseline := calc.Calculate(docs, nil)
	require.Equal(t, 100.0, baseline.ConflictDetectionScore)

	tests := []struct {
		severity domain.ConflictSeverity
		want     float64
	}{
		{domain.ConflictSeverityCritical, 85.0},
		{domain.ConflictSeverityHigh, 90.0},
		{domain.ConflictSeverityMedium, 95.0},
		{domain.ConflictSeverityLow, 98.0},
		{"unrecognized", 95.0}, // Defaults to medium
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			result := calc.Calculate(docs, []domain.Conflict{{Severity: tt.severity}})
			assert.Equal(t, tt.want, result.ConflictDetectionScore)
		})
	}
}

func TestCalculator_VeracityWeights(t *testing.T) {
	// Fix "now" so recency buckets are deterministic
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	calc := &Calculator{now: func() time.Time { return now }}

	tests := []struct {
		name string
		doc  domain.DocumentRecord
		want float64 // expected veracity score for a single-document bundle
	}{
		{
			name: "max weight document",
			doc: domain.DocumentRecord{
				SourceType: domain.SourceTypePDF, Status: domain.SourceStatusFinal,
				IsAuthoritative: true, DocumentDate: timePtr(now.AddDate(0, 0, -5)),
			},
			// 1.5*1.0*1.0*1.2 = 1.8 = the normalization ceiling
			want: 100.0,
		},
		{
			name: "draft word doc, no date",
			doc:  domain.DocumentRecord{SourceType: domain.SourceTypeWord, Status: domain.SourceStatusDraft},
			// 1.0*0.5*0.5*1.0 / 1.8 * 100
			want: 13.89,
		},
		{
			name: "archived transcript aged between 90 and 180 days",
			doc: domain.DocumentRecord{
				SourceType: domain.SourceTypeTranscript, Status: domain.SourceStatusArchived,
				DocumentDate: timePtr(now.AddDate(0, 0, -120)),
			},
			// 1.0*0.6*0.3*1.05 / 1.8 * 100
			want: 10.5,
		},
		{
			name: "unknown type falls back to 0.5",
			doc:  domain.DocumentRecord{SourceType: domain.SourceTypeUnknown, Status: domain.SourceStatusFinal},
			// 1.0*0.5*1.0*1.0 / 1.8 * 100
			want: 27.78,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calc.Calculate([]domain.DocumentRecord{tt.doc}, nil)
			assert.InDelta(t, tt.want, result.SourceVeracityScore, 0.01)
		})
	}
}

func TestCalculator_RecencyBuckets(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	calc := &Calculator{now: func() time.Time { return now }}

	tests := []struct {
		name    string
		daysOld int
		want    float64
	}{
		{"under 30 days", 10, 1.2},
		{"under 90 days", 60, 1.1},
		{"under 180 days", 150, 1.05},
		{"over 180 days", 365, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date := now.AddDate(0, 0, -tt.daysOld)
			assert.Equal(t, tt.want, calc.recencyFactor(&date))
		})
	}

	assert.Equal(t, 1.0, calc.recencyFactor(nil), "missing date gets no bonus")
}

func TestCalculator_ZeroWordCountExcludedFromLogic(t *testing.T) {
	calc := NewCalculator()

	// The second document is packed with keywords but has no word count,
	// so it must not contribute to the density in either direction
	withZero := calc.Calculate([]domain.DocumentRecord{
		{ID: "a", SourceType: domain.SourceTypePDF, Status: domain.SourceStatusFinal,
			WordCount: 1000, Content: "risk mitigation"},
		{ID: "b", SourceType: domain.SourceTypePDF, Status: domain.SourceStatusFinal,
			WordCount: 0, Content: "risk risk risk risk risk tradeoff evidence kpi"},
	}, nil)

	// density = 2/1000*1000 = 2; quality = 1/2; L = 2*10*1.5 = 30
	assert.Equal(t, 30.0, withZero.LogicPresenceScore)
}

func TestCalculator_KeywordMatchingIsWholeWord(t *testing.T) {
	calc := NewCalculator()

	docs := []domain.DocumentRecord{
		{ID: "a", SourceType: domain.SourceTypePDF, Status: domain.SourceStatusFinal,
			WordCount: 100, Content: "brisket asterisked riskiness"},
	}
	result := calc.Calculate(docs, nil)
	assert.Equal(t, 0, result.Breakdown.KeywordsFound, "substrings must not match")

	docs[0].Content = "RISK and Tradeoff and opportunity cost"
	result = calc.Calculate(docs, nil)
	assert.Equal(t, 3, result.Breakdown.KeywordsFound, "matching is case-insensitive")
}

func TestCalculator_DoesNotMutateInputs(t *testing.T) {
	calc := NewCalculator()

	docs := []domain.DocumentRecord{
		{ID: "a", SourceType: domain.SourceTypePDF, Status: domain.SourceStatusFinal,
			WordCount: 10, Content: "risk"},
	}
	conflicts := []domain.Conflict{{Severity: domain.ConflictSeverityHigh}}

	before := docs[0]
	_ = calc.Calculate(docs, conflicts)

	assert.Equal(t, before, docs[0])
	assert.Equal(t, domain.ConflictSeverityHigh, conflicts[0].Severity)
}
