package heuristic

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePolicy = `Section 3 - Surgical Benefits
Knee replacement surgery is covered subject to prior approval.
Arthroscopy is eligible when performed by an orthopedic specialist.

Section 4 - Exclusions
Cosmetic procedures are excluded from this policy.
Experimental treatment is not covered.

Section 5 - Limits
The maximum benefit per surgical procedure is $25,000.
Emergency admissions are reimbursed up to the annual limit.

Section 6 - Pre-existing Conditions
Pre-existing conditions are covered after a 12 month waiting period.`

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  Category
	}{
		{"Does this policy cover knee surgery, and what are the conditions?", CategoryProcedure},
		{"What medical procedures are covered under this policy?", CategoryMedical},
		{"Are there any exclusions or limitations mentioned?", CategoryExclusion},
		{"What is the coverage amount for surgical procedures?", CategoryProcedure},
		{"Does this policy cover pre-existing conditions?", CategoryPreExisting},
		{"What is the maximum payout?", CategoryMonetary},
		{"Who is the insurer?", CategoryGeneric},
		{"", CategoryGeneric},
		{"HOSPITAL stays and limitation periods", CategoryMedical},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query))
		})
	}
}

func TestRules_PrecedenceOrder(t *testing.T) {
	want := []Category{
		CategoryProcedure,
		CategoryMedical,
		CategoryExclusion,
		CategoryMonetary,
		CategoryPreExisting,
		CategoryGeneric,
	}

	got := make([]Category, len(rules))
	for i, r := range rules {
		got[i] = r.category
	}
	assert.Equal(t, want, got)
	assert.Nil(t, rules[len(rules)-1].triggers, "generic rule must match unconditionally")
}

func TestAnalyze_KneeSurgeryScenario(t *testing.T) {
	text := "knee replacement surgery is covered subject to prior approval"

	rec := Analyze(text, "Does this policy cover knee surgery?")

	assert.Equal(t, CategoryProcedure, Classify("Does this policy cover knee surgery?"))
	assert.Contains(t, rec.Answer, "Coverage for the procedure appears to be provided")
	assert.Contains(t, rec.Answer, "1 coverage clause found")
	assert.Contains(t, rec.Conditions, "Requires prior approval")
	assert.Equal(t, []string{SourceClause}, rec.SourceClauses)
	assert.Equal(t, Rationale, rec.Rationale)
}

func TestAnalyze_Conditions(t *testing.T) {
	t.Run("all triggers in order", func(t *testing.T) {
		rec := Analyze(samplePolicy, "knee surgery")
		assert.Equal(t, []string{
			"Requires prior approval",
			"Emergency procedures may have different coverage terms",
			"Cosmetic procedures are typically excluded",
			"Orthopedic procedures are subject to specific policy terms",
		}, rec.Conditions)
	})

	t.Run("case insensitive", func(t *testing.T) {
		rec := Analyze("EMERGENCY care is covered", "anything")
		assert.Equal(t, []string{"Emergency procedures may have different coverage terms"}, rec.Conditions)
	})

	t.Run("default when none match", func(t *testing.T) {
		rec := Analyze("Dental cleaning is covered twice a year.", "dental")
		assert.Equal(t, []string{DefaultCondition}, rec.Conditions)
	})
}

func TestAnalyze_CategoryAnswers(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"procedure", "Is knee surgery covered?", "Coverage for the procedure appears to be provided: 5 coverage clauses found."},
		{"medical", "What medical treatment is included?", "The policy describes covered medical services in 5 coverage clauses."},
		{"exclusion", "Any exclusions?", "The policy contains 3 exclusion or limitation clauses."},
		{"monetary", "What is the maximum amount?", "The policy states monetary amounts or limits in 3 clauses."},
		{"pre-existing", "Are pre-existing conditions included?", "The policy addresses pre-existing conditions."},
		{"generic", "Who underwrites this?", "Keyword analysis of the policy found 6 coverage clauses, 3 exclusion clauses and 3 monetary clauses."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Analyze(samplePolicy, tt.query)
			assert.Contains(t, rec.Answer, tt.want)
		})
	}
}

func TestAnalyze_NotFoundAnswers(t *testing.T) {
	text := "This document describes the claims address."

	assert.Contains(t, Analyze(text, "knee surgery?").Answer, "No explicit coverage clause")
	assert.Contains(t, Analyze(text, "medical treatment?").Answer, "No clauses describing covered medical")
	assert.Contains(t, Analyze(text, "exclusions?").Answer, "No explicit exclusions")
	assert.Contains(t, Analyze(text, "maximum?").Answer, "No coverage amounts")
	assert.Contains(t, Analyze(text, "pre-existing?").Answer, "does not mention pre-existing")
}

func TestAnalyze_ProcedureMentionsExclusions(t *testing.T) {
	rec := Analyze(samplePolicy, "Is arthroscopy covered?")
	assert.Contains(t, rec.Answer, "3 exclusion or limitation clauses may also apply.")
}

func TestAnalyze_EmptyText(t *testing.T) {
	rec := Analyze("", "Does this policy cover knee surgery?")

	assert.Equal(t, emptyAnswer, rec.Answer)
	assert.Equal(t, []string{DefaultCondition}, rec.Conditions)
	assert.Equal(t, []string{SourceClause}, rec.SourceClauses)
	assert.NotEmpty(t, rec.Rationale)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
}

func TestAnalyze_Pure(t *testing.T) {
	queries := []string{
		"Does this policy cover knee surgery, and what are the conditions?",
		"What medical procedures are covered under this policy?",
		"Are there any exclusions or limitations mentioned?",
		"What is the coverage amount for surgical procedures?",
		"Does this policy cover pre-existing conditions?",
	}

	for _, q := range queries {
		first, err := json.Marshal(Analyze(samplePolicy, q))
		require.NoError(t, err)
		second, err := json.Marshal(Analyze(samplePolicy, q))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	}
}

func TestAnalyze_RationaleDisclosesDegradation(t *testing.T) {
	rec := Analyze(samplePolicy, "anything")
	assert.Contains(t, strings.ToLower(rec.Rationale), "degraded")
	assert.Contains(t, rec.Rationale, "keyword-based")
	assert.Contains(t, rec.Rationale, "unavailable")
}

func TestQuote_TruncatesLongLines(t *testing.T) {
	long := strings.Repeat("coverage ", 40)
	q := quote([]string{long})
	assert.True(t, strings.HasSuffix(q, `..."."`) || strings.Contains(q, "..."))
	assert.Less(t, len(q), maxQuoteLen+40)
	assert.Empty(t, quote(nil))
}

func TestAnalyze_NegatedCoverageIsNotAffirmed(t *testing.T) {
	text := "Knee surgery is not covered under this plan."

	rec := Analyze(text, "Does this policy cover knee surgery?")
	assert.NotContains(t, rec.Answer, "appears to be provided")
	assert.Contains(t, rec.Answer, "could not be confirmed")

	medical := Analyze("Hospital treatment is not covered abroad.", "What medical treatment is included?")
	assert.NotContains(t, medical.Answer, "describes covered medical services")
	assert.Contains(t, medical.Answer, "only in exclusion or limitation clauses")

	mixed := Analyze(text+"\nKnee arthroscopy is covered at in-network hospitals.", "Is knee surgery covered?")
	assert.Contains(t, mixed.Answer, "appears to be provided: 1 coverage clause found.")
	assert.Contains(t, mixed.Answer, "arthroscopy")
}

func TestQuote_Punctuation(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"Knee surgery is covered.", ` Most relevant: "Knee surgery is covered."`},
		{"Is surgery covered?", ` Most relevant: "Is surgery covered?"`},
		{"Knee surgery is covered", ` Most relevant: "Knee surgery is covered".`},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, quote([]string{tt.line}))
		})
	}
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 clause", plural(1, "clause"))
	assert.Equal(t, "0 clauses", plural(0, "clause"))
	assert.Equal(t, "3 clauses", plural(3, "clause"))
}
