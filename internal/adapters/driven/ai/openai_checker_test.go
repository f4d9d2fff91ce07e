package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"unicode/utf8"

	"github.com/decisionworks/rigor-core/internal/core/domain"
)

// newFakeOpenAI serves a canned chat completion whose message content is
// the given verdict JSON
func newFakeOpenAI(t *testing.T, verdictJSON string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		resp := map[string]interface{}{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{
					"index": 0,
					"message": map[string]interface{}{
						"role":    "assistant",
						"content": verdictJSON,
					},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func testDocs() []domain.DocumentRecord {
	return []domain.DocumentRecord{
		{ID: "src-1", Title: "Risk register", Content: "mitigation plans for each threat", WordCount: 5},
	}
}

func TestNewOpenAIChecker_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIChecker(Config{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestOpenAIChecker_Check_Satisfied(t *testing.T) {
	server := newFakeOpenAI(t, `{"satisfied": true, "confidence": 0.85, "reasoning": "Mitigations are documented.", "source_ids": ["src-1"]}`, http.StatusOK)
	defer server.Close()

	checker, err := NewOpenAIChecker(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}

	result, err := checker.Check(context.Background(), domain.Criterion{Name: "Risk Assessment", Category: "risk"}, testDocs())
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	if !result.Status {
		t.Error("expected satisfied verdict")
	}
	if result.Confidence != 0.85 {
		t.Errorf("expected confidence 0.85, got %v", result.Confidence)
	}
	if result.Reasoning != "Mitigations are documented." {
		t.Errorf("unexpected reasoning: %q", result.Reasoning)
	}
	if len(result.EvidenceSourceIDs) != 1 || result.EvidenceSourceIDs[0] != "src-1" {
		t.Errorf("unexpected evidence: %v", result.EvidenceSourceIDs)
	}
	if result.CriterionName != "Risk Assessment" {
		t.Errorf("expected criterion name preserved, got %q", result.CriterionName)
	}
}

func TestOpenAIChecker_Check_NotSatisfied(t *testing.T) {
	server := newFakeOpenAI(t, `{"satisfied": false, "confidence": 0.2, "reasoning": "No budget evidence.", "source_ids": []}`, http.StatusOK)
	defer server.Close()

	checker, err := NewOpenAIChecker(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}

	result, err := checker.Check(context.Background(), domain.Criterion{Name: "Budget Plan"}, testDocs())
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	if result.Status {
		t.Error("expected unsatisfied verdict")
	}
	if result.Confidence != 0.2 {
		t.Errorf("expected confidence 0.2, got %v", result.Confidence)
	}
}

func TestOpenAIChecker_Check_ClampsConfidence(t *testing.T) {
	server := newFakeOpenAI(t, `{"satisfied": true, "confidence": 1.7, "reasoning": "x", "source_ids": []}`, http.StatusOK)
	defer server.Close()

	checker, err := NewOpenAIChecker(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}

	result, err := checker.Check(context.Background(), domain.Criterion{Name: "Timeline"}, testDocs())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Confidence != 1.0 {
		t.Errorf("expected confidence clamped to 1.0, got %v", result.Confidence)
	}
}

func TestOpenAIChecker_Check_MalformedVerdict(t *testing.T) {
	server := newFakeOpenAI(t, `not json at all`, http.StatusOK)
	defer server.Close()

	checker, err := NewOpenAIChecker(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}

	if _, err := checker.Check(context.Background(), domain.Criterion{Name: "Timeline"}, testDocs()); err == nil {
		t.Error("expected error for malformed verdict")
	}
}

func TestOpenAIChecker_Check_ServerError(t *testing.T) {
	server := newFakeOpenAI(t, "", http.StatusInternalServerError)
	defer server.Close()

	checker, err := NewOpenAIChecker(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}

	if _, err := checker.Check(context.Background(), domain.Criterion{Name: "Timeline"}, testDocs()); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestTruncateExcerpt_RuneBoundary(t *testing.T) {
	// Each é is two bytes; a byte-index cut at 5 would land mid-rune
	s := "ééééé"

	got := truncateExcerpt(s, 5)
	if got != "éé" {
		t.Errorf("expected two runes, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncated excerpt is not valid UTF-8: %q", got)
	}

	if got := truncateExcerpt("short", 100); got != "short" {
		t.Errorf("expected input unchanged, got %q", got)
	}
	if got := truncateExcerpt("ééééé", 6); got != "ééé" {
		t.Errorf("expected three runes, got %q", got)
	}
}
