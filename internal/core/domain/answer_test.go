package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerRecord_MarshalJSON_FieldOrder(t *testing.T) {
	rec := AnswerRecord{
		Answer:        "Yes",
		Conditions:    []string{"Requires prior approval"},
		SourceClauses: []string{"Section 4.2"},
		Rationale:     "Clause 4.2 covers it.",
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t,
		`{"answer":"Yes","conditions":["Requires prior approval"],"source_clauses":["Section 4.2"],"rationale":"Clause 4.2 covers it."}`,
		string(data))
}

func TestAnswerRecord_MarshalJSON_NilListsAreEmptyArrays(t *testing.T) {
	data, err := json.Marshal(AnswerRecord{})
	require.NoError(t, err)
	assert.Equal(t, `{"answer":"","conditions":[],"source_clauses":[],"rationale":""}`, string(data))

	data, err = json.Marshal(&AnswerRecord{Answer: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"conditions":[]`)
}

func TestAnswerRecord_Normalised(t *testing.T) {
	rec := AnswerRecord{Answer: "a"}.Normalised()
	assert.NotNil(t, rec.Conditions)
	assert.NotNil(t, rec.SourceClauses)
	assert.Empty(t, rec.Conditions)
}

func TestTier(t *testing.T) {
	tests := []struct {
		tier     Tier
		valid    bool
		degraded bool
	}{
		{TierFull, true, false},
		{TierHeuristicContext, true, true},
		{TierHeuristicText, true, true},
		{Tier("other"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.tier.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.tier.IsValid())
			assert.Equal(t, tt.degraded, tt.tier.IsDegraded())
			assert.NotEmpty(t, tt.tier.Description())
		})
	}
}

func TestChunk_End(t *testing.T) {
	c := Chunk{Content: "hello", Start: 10}
	assert.Equal(t, 15, c.End())
}

func TestSessionState_TierFor(t *testing.T) {
	assert.Equal(t, TierFull, StateAnswered.TierFor())
	assert.Equal(t, TierHeuristicContext, StateHeuristicFromContext.TierFor())
	assert.Equal(t, TierHeuristicText, StateHeuristicFromText.TierFor())
	assert.Equal(t, Tier(""), StateIndexed.TierFor())
}
