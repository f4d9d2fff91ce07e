package rigor

import (
	"regexp"
	"strings"
)

// executiveKeywords is the fixed vocabulary of reasoning terms that the
// logic-presence component rewards. Matched whole-word, case-insensitive.
var executiveKeywords = []string{
	"risk", "tradeoff", "alternative", "mitigation", "stakeholder",
	"constraint", "assumption", "dependency", "contingency", "scenario",
	"impact", "likelihood", "consequence", "opportunity cost", "decision",
	"rationale", "justification", "evidence", "data-driven", "metric",
	"kpi", "benchmark", "baseline", "variance", "forecast",
}

var executiveKeywordPattern = regexp.MustCompile(
	`(?i)\b(` + strings.Join(executiveKeywords, "|") + `)\b`,
)

// countExecutiveKeywords returns the number of whole-word keyword
// occurrences in text
func countExecutiveKeywords(text string) int {
	return len(executiveKeywordPattern.FindAllStringIndex(text, -1))
}

// criterionBucket maps a family of criterion names to the keywords that
// count as evidence for it
type criterionBucket struct {
	name     string
	keywords []string
}

// criterionBuckets is the fixed criterion-to-keyword table. Order is
// significant: buckets are tried in declaration order and the first
// bucket whose keywords appear in the criterion name wins.
var criterionBuckets = []criterionBucket{
	{"timeline", []string{"timeline", "schedule", "date", "milestone", "deadline"}},
	{"decision", []string{"decision", "choice", "selected", "approved", "decided"}},
	{"risk", []string{"risk", "threat", "vulnerability", "mitigation", "contingency"}},
	{"budget", []string{"budget", "cost", "expense", "financial", "price", "funding"}},
	{"stakeholder", []string{"stakeholder", "sponsor", "customer", "user", "team"}},
	{"vision", []string{"vision", "mission", "goal", "objective", "target"}},
	{"market", []string{"market", "competitive", "industry", "sector", "landscape"}},
	{"metrics", []string{"metric", "kpi", "measure", "indicator", "target", "goal"}},
	{"alternative", []string{"alternative", "option", "approach", "solution", "choice"}},
	{"tradeoff", []string{"tradeoff", "trade-off", "compromise", "balance", "pros and cons"}},
}

// genericKeywords is the fallback bucket when a criterion name matches
// no bucket
var genericKeywords = []string{"relevant", "information", "data"}

// bucketKeywords resolves a criterion name to its keyword list
func bucketKeywords(criterionName string) []string {
	lower := strings.ToLower(criterionName)
	for _, bucket := range criterionBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(lower, kw) {
				return bucket.keywords
			}
		}
	}
	return genericKeywords
}
