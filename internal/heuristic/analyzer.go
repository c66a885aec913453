// Package heuristic answers policy questions by keyword matching alone.
//
// It is the degraded tier used when the embedding or generative service is
// unavailable. Analysis is pure: the same text and question always yield
// the same AnswerRecord, and no I/O is performed.
package heuristic

import (
	"strings"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

// Fixed fields of every heuristic answer.
const (
	SourceClause     = "Policy text analysis"
	DefaultCondition = "Standard policy terms apply"
	Rationale        = "Degraded analysis: keyword-based matching was used because the " +
		"generative or embedding service was unavailable. The answer reflects " +
		"pattern matches in the policy text, not semantic understanding."
	emptyAnswer = "No policy text was available to analyze."
)

// Classify returns the category of the question. Earlier categories win
// when a question mentions several topics.
func Classify(query string) Category {
	q := strings.ToLower(query)
	for _, r := range rules {
		if r.triggers == nil || r.triggers.in(q) {
			return r.category
		}
	}
	return CategoryGeneric
}

// Analyze produces an answer to query from text using keyword rules.
func Analyze(text, query string) domain.AnswerRecord {
	folded := strings.ToLower(text)
	ev := scan(text)

	answer := emptyAnswer
	if !ev.empty {
		answer = ruleFor(Classify(query)).answer(ev)
	}

	return domain.AnswerRecord{
		Answer:        answer,
		Conditions:    conditions(folded),
		SourceClauses: []string{SourceClause},
		Rationale:     Rationale,
	}
}

func ruleFor(c Category) rule {
	for _, r := range rules {
		if r.category == c {
			return r
		}
	}
	return rules[len(rules)-1]
}

// scan buckets non-blank lines by the topics they mention.
// A line may land in several buckets.
func scan(text string) evidence {
	ev := evidence{empty: true}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ev.empty = false

		l := strings.ToLower(line)
		if coverageTerms.in(l) {
			ev.coverage = append(ev.coverage, line)
		}
		if exclusionTerms.in(l) {
			ev.exclusion = append(ev.exclusion, line)
		}
		if monetaryTerms.in(l) {
			ev.monetary = append(ev.monetary, line)
		}
		if preExistingTerms.in(l) {
			ev.preExisting = true
		}
	}
	return ev
}

func conditions(folded string) []string {
	var out []string
	for _, t := range conditionTriggers {
		if strings.Contains(folded, t.term) {
			out = append(out, t.condition)
		}
	}
	if len(out) == 0 {
		return []string{DefaultCondition}
	}
	return out
}
