// Package ai provides an LLM-backed criterion checker as an optional
// upgrade over the built-in keyword rules. It asks a chat model whether
// the attached documents satisfy a criterion and parses a structured
// verdict out of the reply.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/rigor"
)

// Ensure OpenAIChecker implements CriterionChecker
var _ rigor.CriterionChecker = (*OpenAIChecker)(nil)

// maxExcerptLen caps how much of each document is sent to the model
const maxExcerptLen = 2000

// Config holds OpenAI checker configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OpenAIChecker implements rigor.CriterionChecker using OpenAI chat
// completions
type OpenAIChecker struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIChecker creates a new OpenAI-backed criterion checker
func NewOpenAIChecker(cfg Config) (*OpenAIChecker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIChecker{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		timeout: timeout,
	}, nil
}

// verdict is the JSON shape the model is asked to produce
type verdict struct {
	Satisfied  bool     `json:"satisfied"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	SourceIDs  []string `json:"source_ids"`
}

// Check asks the model whether the documents satisfy the criterion.
// Errors propagate to the caller; the readiness engine degrades them to
// failed checks.
func (c *OpenAIChecker) Check(ctx context.Context, criterion domain.Criterion, docs []domain.DocumentRecord) (rigor.CheckResult, error) {
	result := rigor.CheckResult{
		CriterionName:     criterion.Name,
		CriterionCategory: criterion.Category,
		EvidenceSourceIDs: []string{},
		EvidenceSnippets:  []string{},
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You audit leadership document bundles. Given a required criterion and document excerpts, " +
					"decide whether the documents satisfy the criterion. Reply with JSON only: " +
					`{"satisfied": bool, "confidence": 0.0-1.0, "reasoning": string, "source_ids": [string]}`,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildCheckPrompt(criterion, docs),
			},
		},
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return result, fmt.Errorf("criterion check request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return result, fmt.Errorf("no response from model")
	}

	var v verdict
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return result, fmt.Errorf("parse verdict: %w", err)
	}

	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}

	result.Status = v.Satisfied
	result.Confidence = v.Confidence
	result.Reasoning = v.Reasoning
	if len(v.SourceIDs) > 0 {
		result.EvidenceSourceIDs = v.SourceIDs
	}

	return result, nil
}

// buildCheckPrompt renders the criterion and document excerpts
func buildCheckPrompt(criterion domain.Criterion, docs []domain.DocumentRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Criterion: %s\n", criterion.Name)
	if criterion.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", criterion.Category)
	}
	fmt.Fprintf(&b, "\nDocuments (%d):\n", len(docs))

	for _, doc := range docs {
		title := doc.Title
		if title == "" {
			title = "untitled"
		}
		fmt.Fprintf(&b, "\n--- id=%s title=%q type=%s status=%s ---\n", doc.ID, title, doc.SourceType, doc.Status)

		excerpt := truncateExcerpt(doc.Content, maxExcerptLen)
		b.WriteString(excerpt)
		b.WriteString("\n")
	}

	return b.String()
}

// truncateExcerpt cuts s to at most max bytes without splitting a rune
func truncateExcerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
